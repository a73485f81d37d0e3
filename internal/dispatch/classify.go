// Package dispatch implements the frontend's per-input classification and
// the dispatch state machine that routes each line to a builtin, the
// backend, a direct shell run, or the sandbox for a second opinion (§4.1).
package dispatch

import "strings"

// builtinVocabulary is the control-command surface classify_builtin
// recognizes; everything else falls through to looks_like_ai (§4.1, §6).
var builtinVocabulary = map[string]bool{
	"aweh": true,
	"awes": true,
	"awev": true,
	"awea": true,
	"awem": true,
	"exit": true,
	"quit": true,
}

// shellMetaChars are the characters whose presence marks a line as
// shell-like regardless of wording (§4.1 rule iii).
const shellMetaChars = "|><&;`"

// knownShellCommands is the first-word vocabulary that marks a line as
// shell-like even without metacharacters (§4.1 rule ii).
var knownShellCommands = map[string]bool{
	"ls": true, "cd": true, "pwd": true, "cat": true, "grep": true,
	"find": true, "ps": true, "top": true, "kill": true,
	"mkdir": true, "rmdir": true, "rm": true, "cp": true, "mv": true,
	"chmod": true, "chown": true, "sudo": true,
	"git": true, "docker": true, "kubectl": true, "ssh": true, "scp": true,
	"rsync": true, "tar": true, "gzip": true,
	"vim": true, "nano": true, "emacs": true, "less": true, "more": true,
	"head": true, "tail": true, "sort": true,
	"awk": true, "sed": true, "cut": true, "uniq": true, "wc": true,
	"diff": true, "patch": true, "make": true,
}

// nlIndicators is the natural-language vocabulary that marks a line as an
// AI query once it has survived the shell-likeness checks (§4.1 rule iv).
var nlIndicators = map[string]bool{
	"write": true, "create": true, "generate": true, "explain": true,
	"analyze": true, "summarize": true,
	"what": true, "how": true, "why": true, "when": true, "where": true,
	"who": true, "which": true,
	"help": true, "assist": true, "suggest": true, "recommend": true,
	"find": true, "search": true,
	"poem": true, "story": true, "code": true, "script": true,
	"function": true, "class": true,
	"error": true, "bug": true, "issue": true, "problem": true,
	"fix": true, "solution": true,
}

// BuiltinCommand is classify_builtin's parsed result.
type BuiltinCommand struct {
	Name string
	Args []string
}

// ClassifyBuiltin reports whether line is one of F's own control commands
// (§4.1, §6) and splits it into a name and argument list if so.
func ClassifyBuiltin(line string) (BuiltinCommand, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return BuiltinCommand{}, false
	}
	if !builtinVocabulary[fields[0]] {
		return BuiltinCommand{}, false
	}
	return BuiltinCommand{Name: fields[0], Args: fields[1:]}, true
}

// LooksLikeAI implements the precedence order of §4.1's pure-function
// heuristic: the known-shell and metacharacter checks are shell-likeness
// overrides and run first, then a literal '?' marks the line as AI (§8
// scenario 4: "how do I compress a directory?" takes the AI path), and
// finally an NL-indicator token marks it as AI.
func LooksLikeAI(line string) bool {
	if firstWordIsKnownShell(line) {
		return false
	}
	if strings.ContainsAny(line, shellMetaChars) {
		return false
	}
	if strings.Contains(line, "?") {
		return true
	}
	return containsNLIndicator(line)
}

func firstWordIsKnownShell(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return knownShellCommands[fields[0]]
}

func containsNLIndicator(line string) bool {
	lower := strings.ToLower(line)
	for word := range nlIndicators {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

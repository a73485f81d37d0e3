// Package ipc implements the wire-level plumbing shared by awesh's child
// processes: Unix domain socket lifecycle, the length-prefixed verdict
// record carried over shared memory, and the plain-text prefixes used on
// the frontend<->backend and frontend<->sandbox channels.
package ipc

import "strings"

// Prefixes that identify the originator's intent on the frontend<->backend
// channel. Only CWD:, STATUS and BASH_FAILED: (systemPrefixes below) are
// exempt from proxy pattern blocking (I5).
const (
	PrefixQuery       = "QUERY:"
	PrefixCWD         = "CWD:"
	PrefixStatus      = "STATUS"
	PrefixBashFailed  = "BASH_FAILED:"
	PrefixVerbose     = "VERBOSE:"
	PrefixAIProvider  = "AI_PROVIDER:"
	PrefixModel       = "MODEL:"
	PrefixStatusUpd   = "STATUS_UPDATE:"
	PrefixSecAlert    = "SECURITY_ALERT:"
	PrefixVerboseUpd  = "VERBOSE_UPDATE:"
	PrefixThreatFound = "THREAT_DETECTED:"
	PrefixAIReady     = "AI_READY"
	PrefixAILoading   = "AI_LOADING"
	PrefixCmdRoute    = "awesh_cmd: "
	PrefixEditRoute   = "awesh_edit: "
)

// SecurityBlockedNotice is the fixed refusal the proxy writes back to the
// frontend side of the connection when a payload is blocked (I3).
const SecurityBlockedNotice = "SECURITY_BLOCKED: Command blocked by security agent"

// systemPrefixes lists the prefixes that I5 exempts from pattern blocking.
var systemPrefixes = []string{PrefixCWD, PrefixStatus, PrefixBashFailed}

// IsSystemPrefixed reports whether payload begins with a prefix the proxy
// must forward unchanged regardless of its pattern lists.
func IsSystemPrefixed(payload string) bool {
	for _, p := range systemPrefixes {
		if strings.HasPrefix(payload, p) {
			return true
		}
	}
	return false
}

// Special sandbox exit codes (stable wire values, §6).
const (
	ExitInteractive = -103
	ExitUserError   = -109
	ExitAIHelp      = -113

	// ExitOtherFailure is not one of the spec's three stable sentinels; it
	// exists because VALID and OTHER_FAILURE would otherwise be
	// indistinguishable on the wire whenever a candidate's real exit code
	// happens to fall outside the other sentinels' range. Unlike the three
	// above it is purely an implementation seam between this sandbox and
	// this frontend, never documented to external callers.
	ExitOtherFailure = -199
)

// Sandbox socket reply words.
const (
	ReplyOK    = "OK"
	ReplyError = "ERROR"
)

package proxy

import (
	"fmt"
	"regexp"
	"strings"
)

// Tier names the severity bucket a matched pattern belongs to (§4.3).
type Tier int

const (
	TierNone Tier = iota
	TierSensitive
	TierDangerous
)

func (t Tier) String() string {
	switch t {
	case TierDangerous:
		return "DANGEROUS"
	case TierSensitive:
		return "SENSITIVE"
	default:
		return "NONE"
	}
}

// dangerousPatterns covers commands that can destroy data or the running
// system outright (§4.3).
var dangerousPatterns = []string{
	`rm\s+-rf\s+/`,
	`sudo\s+rm\s+-rf`,
	`dd\s+if=/dev/urandom`,
	`mkfs\s+`,
	`fdisk\s+`,
}

// sensitivePatterns covers commands that change system or account state in
// ways worth a second look but aren't immediately destructive (§4.3).
var sensitivePatterns = []string{
	`passwd\s+`,
	`chmod\s+777`,
	`chown\s+`,
	`iptables\s+`,
	`systemctl\s+`,
}

// Matcher holds the compiled DANGEROUS and SENSITIVE pattern tiers, built
// once at startup (grounded on the single-compile-pass redactor pattern).
type Matcher struct {
	dangerous []*regexp.Regexp
	sensitive []*regexp.Regexp
}

// NewMatcher compiles the fixed pattern tiers.
func NewMatcher() (*Matcher, error) {
	m := &Matcher{}
	var err error
	if m.dangerous, err = compileAll(dangerousPatterns); err != nil {
		return nil, fmt.Errorf("compile dangerous patterns: %w", err)
	}
	if m.sensitive, err = compileAll(sensitivePatterns); err != nil {
		return nil, fmt.Errorf("compile sensitive patterns: %w", err)
	}
	return m, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Classify reports the first tier payload matches, checking in order the
// DANGEROUS patterns, the SENSITIVE patterns, and then the lexical rm/-rf
// co-occurrence rule that catches obfuscated variants the regex tiers miss
// (§4.3 secondary rule), which reports TierDangerous. A payload matching a
// SENSITIVE pattern is reported as TierSensitive even if it also satisfies
// the rm/-rf rule.
func (m *Matcher) Classify(payload string) Tier {
	for _, re := range m.dangerous {
		if re.MatchString(payload) {
			return TierDangerous
		}
	}
	for _, re := range m.sensitive {
		if re.MatchString(payload) {
			return TierSensitive
		}
	}
	if strings.Contains(payload, "rm") && strings.Contains(payload, "-rf") {
		return TierDangerous
	}
	return TierNone
}

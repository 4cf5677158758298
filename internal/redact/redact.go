package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules are regex heuristics for common secret types. Order matters: the
// more specific token formats run before the generic assignments.
var rules = []rule{
	{"private-key", regexp.MustCompile(`(?s)-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----.*?-----END\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`)},
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-(?:proj-)?[A-Za-z0-9_-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"'\n]{8,})["']`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces detected secrets in text with [REDACTED] and returns the
// names of the rules that fired, without duplicates.
func Secrets(text string) (string, []string) {
	result := text
	var hits []string
	for _, r := range rules {
		if !r.re.MatchString(result) {
			continue
		}
		result = r.re.ReplaceAllLiteralString(result, placeholder)
		if !contains(hits, r.name) {
			hits = append(hits, r.name)
		}
	}
	return result, hits
}

// ShouldRedactPath checks if a file path matches any of the redaction path patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// "**/" prefixed patterns match the file name at any depth.
		cleanPattern := strings.TrimPrefix(pattern, "**/")
		if cleanPattern != pattern {
			matched, err = filepath.Match(cleanPattern, filepath.Base(path))
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Diff redacts a unified diff for path. When path matches one of
// redactPaths the hunks are dropped entirely and only the file headers are
// kept; otherwise detected secrets are replaced in place.
func Diff(diff, path string, redactPaths []string) (string, []string) {
	if !ShouldRedactPath(path, redactPaths) {
		return Secrets(diff)
	}
	var b strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "@@") {
			break
		}
		if line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteString(placeholder + " (file content redacted by path policy)\n")
	return b.String(), []string{"path-policy"}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package redact

import (
	"regexp"
)

const placeholder = "[REDACTED]"

type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules are regex heuristics for common secret types. A non-empty repl keeps
// the captured prefix and replaces only the secret itself.
var rules = []rule{
	// Generic API keys (long strings after common key patterns)
	{re: regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	// Key query parameters in URLs (Gemini passes its key this way)
	{re: regexp.MustCompile(`([?&](?:key|api_key|access_token)=)[^&\s"']+`), repl: "${1}" + placeholder},
	// AWS access key IDs
	{re: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	// AWS secret access keys
	{re: regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	// Generic secrets/tokens/passwords in assignments
	{re: regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	// Bearer tokens
	{re: regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	// JWTs
	{re: regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	// Private key blocks
	{re: regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`)},
	// GitHub tokens
	{re: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	// Slack tokens
	{re: regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	// Anthropic API keys
	{re: regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	// OpenAI API keys
	{re: regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	// Google API keys
	{re: regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)},
	// Generic long hex strings in an assignment
	{re: regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, r := range rules {
		if r.repl != "" {
			result = r.re.ReplaceAllString(result, r.repl)
			continue
		}
		result = r.re.ReplaceAllLiteralString(result, placeholder)
	}
	return result
}

// Count returns how many secrets Secrets would replace in text.
func Count(text string) int {
	n := 0
	for _, r := range rules {
		n += len(r.re.FindAllStringIndex(text, -1))
	}
	return n
}

// Error returns err with secrets removed from its message. The result still
// unwraps to err, so errors.Is and errors.As keep working.
func Error(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	clean := Secrets(msg)
	if clean == msg {
		return err
	}
	return &redactedError{msg: clean, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

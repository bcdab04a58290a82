package service

import "regexp"

// Redaction masks obvious PII before document content leaves the system
// toward an AI provider. Patterns are deliberately conservative: email
// addresses, phone-like number groups, and long digit runs (national id
// and account numbers).
var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?\d[\d\s\-\.]{7,}\d`)
	longDigitRun   = regexp.MustCompile(`\b\d{8,}\b`)
	redactedMarker = "[REDACTADO]"
)

// RedactPII replaces recognized PII spans with a marker. It runs in the
// AI worker, just before content is handed to a provider; run input
// hashes are computed over the raw content plus the redaction flag.
func RedactPII(content string) string {
	out := emailPattern.ReplaceAllString(content, redactedMarker)
	out = phonePattern.ReplaceAllString(out, redactedMarker)
	out = longDigitRun.ReplaceAllString(out, redactedMarker)
	return out
}

package classify

import "strings"

const promptHead = `You are a privacy compliance analyst.

Return STRICT JSON only:

{
  "mentions_biometric_data": true/false,
  "mentions_location_tracking": true/false,
  "mentions_camera_or_microphone": true/false,
  "data_retention_policy_present": true/false,
  "retention_duration_specified": true/false,
  "risk_reason": "brief explanation"
}

Clause:
"""`

// BuildPrompt wraps one chunk in the classification instructions
func BuildPrompt(chunk string) string {
	var b strings.Builder
	b.Grow(len(promptHead) + len(chunk) + 8)
	b.WriteString(promptHead)
	// a stray triple quote would close the clause block early
	b.WriteString(strings.ReplaceAll(chunk, `"""`, `"`))
	b.WriteString("\"\"\"\n")
	return b.String()
}

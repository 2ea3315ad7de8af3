// Package verdict holds the model-path result types, the response extractor and the reducer
package verdict

import (
	"encoding/json"
	"strings"
)

// NoRelevantReason is the reason carried by the sentinel verdict
const NoRelevantReason = "no relevant clauses found"

// Partial is one chunk's classification. The zero value is the empty verdict
type Partial struct {
	Biometric            bool   `json:"mentions_biometric_data"`
	LocationTracking     bool   `json:"mentions_location_tracking"`
	CameraOrMicrophone   bool   `json:"mentions_camera_or_microphone"`
	RetentionPolicy      bool   `json:"data_retention_policy_present"`
	RetentionDurationSet bool   `json:"retention_duration_specified"`
	Reason               string `json:"risk_reason"`
}

// Aggregate is the OR-reduction of every Partial in a run
type Aggregate struct {
	Biometric            bool   `json:"mentions_biometric_data"`
	LocationTracking     bool   `json:"mentions_location_tracking"`
	CameraOrMicrophone   bool   `json:"mentions_camera_or_microphone"`
	RetentionPolicy      bool   `json:"data_retention_policy_present"`
	RetentionDurationSet bool   `json:"retention_duration_specified"`
	Reason               string `json:"risk_reason"`
}

// IsEmpty reports whether p carries no evidence at all
func (p Partial) IsEmpty() bool { return p == Partial{} }

// Any reports whether any risk flag is set
func (a Aggregate) Any() bool {
	return a.Biometric || a.LocationTracking || a.CameraOrMicrophone ||
		a.RetentionPolicy || a.RetentionDurationSet
}

// NoRelevantClauses is the fixed verdict for input with nothing worth classifying
func NoRelevantClauses() Aggregate {
	return Aggregate{Reason: NoRelevantReason}
}

// Extract pulls one verdict out of raw model output.
// The span runs from the first '{' to the last '}'; anything that does not parse
// as a Partial yields the empty verdict and ok=false. It never panics
func Extract(raw string) (Partial, bool) {
	span, ok := locate(raw)
	if !ok {
		return Partial{}, false
	}
	return parse(span)
}

// locate returns the widest brace-delimited span in s
func locate(s string) (string, bool) {
	i := strings.IndexByte(s, '{')
	if i < 0 {
		return "", false
	}
	j := strings.LastIndexByte(s, '}')
	if j < i {
		return "", false
	}
	return s[i : j+1], true
}

func parse(span string) (Partial, bool) {
	var p Partial
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		return Partial{}, false
	}
	p.Reason = strings.TrimSpace(p.Reason)
	return p, true
}

// Reduce ORs every flag and joins the non-empty reasons with one space, in input order.
// An empty or all-empty input gives an all-false verdict with an empty reason
func Reduce(parts []Partial) Aggregate {
	var a Aggregate
	reasons := make([]string, 0, len(parts))
	for _, p := range parts {
		a.Biometric = a.Biometric || p.Biometric
		a.LocationTracking = a.LocationTracking || p.LocationTracking
		a.CameraOrMicrophone = a.CameraOrMicrophone || p.CameraOrMicrophone
		a.RetentionPolicy = a.RetentionPolicy || p.RetentionPolicy
		a.RetentionDurationSet = a.RetentionDurationSet || p.RetentionDurationSet
		if r := strings.TrimSpace(p.Reason); r != "" {
			reasons = append(reasons, r)
		}
	}
	a.Reason = strings.Join(reasons, " ")
	return a
}

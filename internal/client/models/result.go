package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Threat is one Safe Browsing match reported for a link.
type Threat struct {
	Type     string `json:"threat_type"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SafetyCheck is the link safety report. Error is set when the backend could
// not run the check; Safe and Verdict are meaningless then.
type SafetyCheck struct {
	Safe    bool     `json:"safe"`
	Verdict string   `json:"verdict"`
	Details string   `json:"details"`
	Error   string   `json:"error"`
	Threats []Threat `json:"threats"`
}

// VerificationResult is a decoded verification response.
type VerificationResult struct {
	Verdict BackendVerdict
	// Confidence is the backend score in percent; nil when it sent none.
	Confidence    *int
	Summary       string
	Evidence      []Evidence
	Safety        *SafetyCheck
	SafetyStatus  string
	ImageAnalysis string
	Title         string
}

// Presentation returns the presentation verdict.
func (r VerificationResult) Presentation() Verdict {
	return r.Verdict.Presentation()
}

// Score returns the backend confidence when present, otherwise the verdict's
// fallback value.
func (r VerificationResult) Score() int {
	if r.Confidence != nil {
		return *r.Confidence
	}
	return r.Verdict.FallbackConfidence()
}

type resultWire struct {
	Verdict       string          `json:"verdict"`
	Confidence    json.RawMessage `json:"confidence"`
	Summary       string          `json:"summary"`
	Explanation   string          `json:"explanation"`
	Proofs        json.RawMessage `json:"proofs"`
	SafetyCheck   json.RawMessage `json:"safety_check"`
	SafetyStatus  string          `json:"safety_status"`
	ImageAnalysis string          `json:"image_analysis"`
	ResolvedTitle string          `json:"resolvedTitle"`
}

// UnmarshalJSON decodes a backend verification payload. An unknown verdict
// is an error wrapping ErrUnknownVerdict.
func (r *VerificationResult) UnmarshalJSON(data []byte) error {
	var w resultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	verdict, err := ParseBackendVerdict(w.Verdict)
	if err != nil {
		return err
	}

	evidence, err := DecodeEvidence(w.Proofs)
	if err != nil {
		return err
	}

	out := VerificationResult{
		Verdict:       verdict,
		Confidence:    clampConfidence(w.Confidence),
		Summary:       firstNonEmpty(w.Summary, w.Explanation),
		Evidence:      evidence,
		SafetyStatus:  w.SafetyStatus,
		ImageAnalysis: w.ImageAnalysis,
		Title:         w.ResolvedTitle,
	}

	if len(w.SafetyCheck) > 0 && !isNull(w.SafetyCheck) {
		var sc SafetyCheck
		if err := json.Unmarshal(w.SafetyCheck, &sc); err != nil {
			return fmt.Errorf("decode safety_check: %w", err)
		}
		out.Safety = &sc
	}

	*r = out
	return nil
}

// clampConfidence reads a percentage and clamps it to [0, 100]. Fractions in
// (0, 1) are read as ratios.
func clampConfidence(raw json.RawMessage) *int {
	f, ok := rawPercent(raw)
	if !ok || math.IsNaN(f) {
		return nil
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	v := int(math.Round(math.Max(0, math.Min(100, f))))
	return &v
}

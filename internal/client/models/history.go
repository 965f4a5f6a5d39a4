package models

import (
	"encoding/json"
	"strings"
	"time"
)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// HistoryRecord is one past verification of the session owner.
type HistoryRecord struct {
	ID         string
	Verdict    BackendVerdict
	Confidence *int
	Summary    string
	CreatedAt  time.Time
	InputType  Kind
	Evidence   []Evidence
}

type historyWire struct {
	ID         json.RawMessage `json:"id"`
	Verdict    string          `json:"verdict"`
	Confidence json.RawMessage `json:"confidence"`
	Summary    string          `json:"summary"`
	CreatedAt  string          `json:"createdAt"`
	InputType  string          `json:"inputType"`
	Proofs     json.RawMessage `json:"proofs"`
}

// UnmarshalJSON is lenient: unknown verdicts read as Unverified, malformed
// proofs and timestamps are dropped. A single odd record never hides the
// rest of the list.
func (h *HistoryRecord) UnmarshalJSON(data []byte) error {
	var w historyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	verdict, err := ParseBackendVerdict(w.Verdict)
	if err != nil {
		verdict = BackendUnverified
	}
	evidence, err := DecodeEvidence(w.Proofs)
	if err != nil {
		evidence = nil
	}

	*h = HistoryRecord{
		ID:         rawString(w.ID),
		Verdict:    verdict,
		Confidence: clampConfidence(w.Confidence),
		Summary:    w.Summary,
		CreatedAt:  parseCreatedAt(w.CreatedAt),
		InputType:  Kind(strings.ToLower(strings.TrimSpace(w.InputType))),
		Evidence:   evidence,
	}
	return nil
}

// Result converts the record into a result that can be replayed without a
// network call.
func (h HistoryRecord) Result() VerificationResult {
	return VerificationResult{
		Verdict:    h.Verdict,
		Confidence: h.Confidence,
		Summary:    h.Summary,
		Evidence:   h.Evidence,
	}
}

func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

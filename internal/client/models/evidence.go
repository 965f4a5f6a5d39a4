package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// EvidenceKind tells where a piece of evidence came from.
type EvidenceKind string

const (
	EvidenceNote         EvidenceKind = "note"
	EvidenceFactCheck    EvidenceKind = "fact_check"
	EvidenceReverseImage EvidenceKind = "reverse_image"
	EvidenceProvenance   EvidenceKind = "provenance"
)

// Evidence is one supporting citation attached to a verification result.
// Notes carry only Text; citations carry source metadata.
type Evidence struct {
	Kind    EvidenceKind
	Text    string
	Source  string
	Title   string
	URL     string
	Domain  string
	Rating  string
	Date    string
	Snippet string
}

// DecodeEvidence reads the backend "proofs" field, which comes in several
// shapes: an array of strings, an array of citation objects, a JSON document
// encoded as a string, a bare string, or an object grouping factChecks,
// reverseImage and provenance.
func DecodeEvidence(raw json.RawMessage) ([]Evidence, error) {
	return decodeEvidence(raw, true)
}

func decodeEvidence(raw json.RawMessage, unwrapString bool) ([]Evidence, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode proofs: %w", err)
		}
		out := make([]Evidence, 0, len(items))
		for _, item := range items {
			e, ok, err := decodeEvidenceItem(item, EvidenceFactCheck)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, e)
			}
		}
		return out, nil

	case '{':
		return decodeGroupedEvidence(raw)

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode proofs: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if unwrapString && (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) {
			if out, err := decodeEvidence(json.RawMessage(s), false); err == nil {
				return out, nil
			}
		}
		return []Evidence{{Kind: EvidenceNote, Text: s}}, nil

	default:
		return []Evidence{{Kind: EvidenceNote, Text: string(raw)}}, nil
	}
}

func decodeGroupedEvidence(raw json.RawMessage) ([]Evidence, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode proofs: %w", err)
	}

	_, hasFactChecks := fields["factChecks"]
	_, hasReverse := fields["reverseImage"]
	_, hasProvenance := fields["provenance"]
	if !hasFactChecks && !hasReverse && !hasProvenance {
		e, ok, err := decodeEvidenceItem(raw, EvidenceFactCheck)
		if err != nil || !ok {
			return nil, err
		}
		return []Evidence{e}, nil
	}

	var out []Evidence
	for _, group := range []struct {
		key  string
		kind EvidenceKind
	}{
		{"factChecks", EvidenceFactCheck},
		{"reverseImage", EvidenceReverseImage},
	} {
		var items []json.RawMessage
		if v, ok := fields[group.key]; ok && !isNull(v) {
			if err := json.Unmarshal(v, &items); err != nil {
				return nil, fmt.Errorf("decode proofs.%s: %w", group.key, err)
			}
		}
		for _, item := range items {
			e, ok, err := decodeEvidenceItem(item, group.kind)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, e)
			}
		}
	}

	if v, ok := fields["provenance"]; ok && !isNull(v) {
		var p struct {
			HasC2PA bool            `json:"hasC2PA"`
			Issuer  json.RawMessage `json:"issuer"`
			Summary json.RawMessage `json:"summary"`
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("decode proofs.provenance: %w", err)
		}
		text := rawString(p.Summary)
		if text == "" {
			text = "No content credentials found"
			if p.HasC2PA {
				text = "Content credentials (C2PA) present"
			}
		}
		out = append(out, Evidence{Kind: EvidenceProvenance, Source: rawString(p.Issuer), Text: text})
	}

	return out, nil
}

// decodeEvidenceItem decodes one array element. Strings become notes,
// objects become citations of the given kind. Empty items are skipped.
func decodeEvidenceItem(raw json.RawMessage, kind EvidenceKind) (Evidence, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return Evidence{}, false, nil
	}
	if raw[0] != '{' {
		s := strings.TrimSpace(rawString(raw))
		if s == "" {
			return Evidence{}, false, nil
		}
		return Evidence{Kind: EvidenceNote, Text: s}, true, nil
	}

	var f map[string]json.RawMessage
	if err := json.Unmarshal(raw, &f); err != nil {
		return Evidence{}, false, fmt.Errorf("decode proof: %w", err)
	}

	e := Evidence{
		Kind:    kind,
		Source:  rawString(f["source"]),
		Title:   rawString(f["title"]),
		URL:     rawString(f["url"]),
		Domain:  rawString(f["domain"]),
		Rating:  rawString(f["rating"]),
		Date:    firstNonEmpty(rawString(f["date"]), rawString(f["firstSeen"])),
		Snippet: rawString(f["snippet"]),
		Text:    firstNonEmpty(rawString(f["text"]), rawString(f["summary"]), rawString(f["description"])),
	}
	if e.URL == "" {
		e.URL = rawString(f["pageUrl"])
	}
	if e.Domain == "" {
		e.Domain = hostOf(e.URL)
	}
	if e == (Evidence{Kind: kind}) {
		return Evidence{}, false, nil
	}
	return e, true, nil
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

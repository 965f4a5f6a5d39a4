package models

import (
	"errors"
	"fmt"
	"strings"
)

// BackendVerdict is the vocabulary returned by the verification backend.
type BackendVerdict string

const (
	BackendReal       BackendVerdict = "Real"
	BackendFake       BackendVerdict = "Fake"
	BackendMisleading BackendVerdict = "Misleading"
	BackendUnverified BackendVerdict = "Unverified"
)

// BackendVerdicts lists every backend verdict.
var BackendVerdicts = []BackendVerdict{BackendReal, BackendFake, BackendMisleading, BackendUnverified}

// Verdict is the presentation vocabulary shown to the user.
type Verdict string

const (
	VerdictVerified           Verdict = "Verified"
	VerdictFake               Verdict = "Fake"
	VerdictPossiblyMisleading Verdict = "Possibly Misleading"
)

// ErrUnknownVerdict is returned for a verdict outside the backend vocabulary.
var ErrUnknownVerdict = errors.New("unknown verdict")

// ParseBackendVerdict matches s case-insensitively against the backend
// vocabulary. An empty value means the backend reached no conclusion and is
// read as Unverified.
func ParseBackendVerdict(s string) (BackendVerdict, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BackendUnverified, nil
	}
	for _, v := range BackendVerdicts {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVerdict, s)
}

// Presentation maps a backend verdict onto the presentation vocabulary.
// Unverified shares the Possibly Misleading bucket with Misleading; any value
// outside the vocabulary lands there too, so the mapping is total.
func (v BackendVerdict) Presentation() Verdict {
	switch v {
	case BackendReal:
		return VerdictVerified
	case BackendFake:
		return VerdictFake
	default:
		return VerdictPossiblyMisleading
	}
}

// FallbackConfidence is the score shown when the backend did not send one.
func (v BackendVerdict) FallbackConfidence() int {
	switch v {
	case BackendReal:
		return 90
	case BackendFake:
		return 85
	case BackendMisleading:
		return 60
	default:
		return 30
	}
}

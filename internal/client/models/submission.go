package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/verifynow/internal/filex"
	"github.com/google/uuid"
)

// Kind is the type of content submitted for verification.
type Kind string

const (
	KindText  Kind = "text"
	KindLink  Kind = "link"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	ErrEmptyPayload = errors.New("nothing to verify")
	ErrNoImage      = errors.New("image submission requires an image")
)

// Submission is one user-initiated verification request. It is immutable
// once built; the orchestrator claims it at most once.
type Submission struct {
	ID      uuid.UUID
	Kind    Kind
	Payload string
	Image   *filex.Image

	once    sync.Once
	claimed any
}

// NewSubmission builds a text, link or video submission. Text and link
// submissions need a non-blank payload.
func NewSubmission(kind Kind, payload string) (*Submission, error) {
	payload = strings.TrimSpace(payload)
	// video is never sent, so it needs no payload
	if payload == "" && kind != KindVideo {
		return nil, fmt.Errorf("%s: %w", kind, ErrEmptyPayload)
	}
	return &Submission{ID: uuid.New(), Kind: kind, Payload: payload}, nil
}

// NewImageSubmission builds an image submission; Payload holds the file name.
func NewImageSubmission(img *filex.Image) (*Submission, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, ErrNoImage
	}
	return &Submission{ID: uuid.New(), Kind: KindImage, Payload: img.Name, Image: img}, nil
}

// Claim calls create the first time it is invoked for this submission and
// returns that same value on every call.
func (s *Submission) Claim(create func() any) any {
	s.once.Do(func() {
		s.claimed = create()
	})
	return s.claimed
}

package models

import (
	"encoding/json"

	"github.com/dmitrijs2005/verifynow/internal/common"
)

const defaultUserName = "User"

// UserProfile is the account the session belongs to.
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// UnmarshalJSON accepts numeric ids and null fields.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var w struct {
		ID    json.RawMessage `json:"id"`
		Email json.RawMessage `json:"email"`
		Name  json.RawMessage `json:"name"`
		Image json.RawMessage `json:"image"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = UserProfile{
		ID:    rawString(w.ID),
		Email: rawString(w.Email),
		Name:  rawString(w.Name),
		Image: rawString(w.Image),
	}
	return nil
}

// Normalize returns a copy in which Name falls back to the local part of
// Email, and to "User" when both are empty.
func (u UserProfile) Normalize() UserProfile {
	if u.Name == "" {
		u.Name = common.EmailLocalPart(u.Email)
	}
	if u.Name == "" {
		u.Name = defaultUserName
	}
	return u
}

// Credential is the bearer token together with the profile it was issued for.
// The zero value is the logged-out session.
type Credential struct {
	Token string
	User  UserProfile
}

// IsAuthenticated reports whether both a token and a profile email are present.
func (c Credential) IsAuthenticated() bool {
	return c.Token != "" && c.User.Email != ""
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/verifynow/internal/common"
	"github.com/dmitrijs2005/verifynow/internal/dbx"
)

var errCorruptProfile = errors.New("stored profile is corrupted")

// credentialStore keeps the credential under two metadata keys that are
// always written and removed together.
type credentialStore struct {
	db *sql.DB
}

// load returns the stored credential. A missing profile yields a credential
// with only the token; an unparsable one yields errCorruptProfile.
func (s credentialStore) load(ctx context.Context) (models.Credential, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return models.Credential{}, err
	}
	raw, err := repo.Get(ctx, common.UserStorageKey)
	if err != nil {
		return models.Credential{}, err
	}

	cred := models.Credential{Token: string(token)}
	if raw == nil {
		return cred, nil
	}

	var user models.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", errCorruptProfile, err)
	}
	cred.User = user
	return cred, nil
}

func (s credentialStore) save(ctx context.Context, cred models.Credential) error {
	profile, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenStorageKey, []byte(cred.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserStorageKey, profile)
	})
}

func (s credentialStore) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.TokenStorageKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.UserStorageKey)
	})
}

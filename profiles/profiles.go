// Package profiles keeps a user's profile, role and linked jockey record
// consistent. Profiles are created lazily on first authenticated access,
// jockey records are synthesized when a profile carries the jockey role
// without one, and deleting a jockey-role profile cleans up its jockey.
// All of it runs at explicit checkpoints (profile read, role change,
// deletion) rather than hidden in persistence hooks.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/models"
)

// Defaults for a synthesized jockey record.
const (
	DefaultJockeyAge    = 25
	DefaultJockeyRating = 5
	UnspecifiedAddress  = "unspecified"
)

var (
	ErrUnknownUser = errors.New("unknown user")
	ErrNoProfile   = errors.New("user profile not found")
)

// JockeyFromUser builds a jockey record for a member who carries the jockey
// role but has no linked record yet. Name comes from the user's first/last
// name falling back to the username; address from the profile.
func JockeyFromUser(user *models.User, profile *models.UserProfile) *models.Jockey {
	address := UnspecifiedAddress
	if profile.Address != nil && *profile.Address != "" {
		address = *profile.Address
	}
	return &models.Jockey{
		Name:    user.DisplayName(),
		Address: address,
		Age:     DefaultJockeyAge,
		Rating:  DefaultJockeyRating,
	}
}

// Find returns the profile for username without creating one. Returns
// ErrUnknownUser when the account does not exist and ErrNoProfile when the
// account has no profile yet.
func Find(ctx context.Context, db bun.IDB, username string) (*models.UserProfile, error) {
	user := &models.User{}
	err := db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	profile := &models.UserProfile{}
	err = db.NewSelect().Model(profile).
		Relation("Jockey").
		Where("up.user_id = ?", user.ID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("look up profile for %q: %w", username, err)
	}

	profile.User = user
	return profile, nil
}

// Ensure returns the caller's profile, creating one with the default "user"
// role on first authenticated access. Lazy creation never grants elevated
// rights. When the profile carries the jockey role without a linked jockey,
// one is synthesized before returning.
func Ensure(ctx context.Context, db *bun.DB, username string) (*models.UserProfile, error) {
	profile, err := Find(ctx, db, username)
	if errors.Is(err, ErrNoProfile) {
		profile, err = createDefault(ctx, db, username)
	}
	if err != nil {
		return nil, err
	}

	if err := SyncJockey(ctx, db, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func createDefault(ctx context.Context, db *bun.DB, username string) (*models.UserProfile, error) {
	user := &models.User{}
	if err := db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	profile := &models.UserProfile{UserID: user.ID, Role: models.RoleUser}
	_, err := db.NewInsert().Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("create default profile for %q: %w", username, err)
	}

	// Re-read in case a concurrent request created it first.
	return Find(ctx, db, username)
}

// SyncJockey synthesizes and links a jockey record when the profile's role
// is "jockey" and none is linked yet. A no-op for every other state.
func SyncJockey(ctx context.Context, db bun.IDB, profile *models.UserProfile) error {
	if !profile.IsJockey() || profile.JockeyID != nil {
		return nil
	}
	if profile.User == nil {
		return fmt.Errorf("profile %d has no user loaded", profile.ID)
	}

	jockey := JockeyFromUser(profile.User, profile)
	if _, err := db.NewInsert().Model(jockey).Exec(ctx); err != nil {
		return fmt.Errorf("create jockey for profile %d: %w", profile.ID, err)
	}

	profile.JockeyID = &jockey.ID
	profile.Jockey = jockey
	_, err := db.NewUpdate().Model(profile).
		Column("jockey_id").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("link jockey %d to profile %d: %w", jockey.ID, profile.ID, err)
	}
	return nil
}

// SetRole changes the profile's role. Moving to "jockey" synthesizes and
// links a jockey record; moving off it deletes the linked record. Runs in
// one transaction so the profile and jockey never diverge.
func SetRole(ctx context.Context, db *bun.DB, profile *models.UserProfile, role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	if role == profile.Role {
		return nil
	}

	wasJockey := profile.IsJockey()
	oldJockeyID := profile.JockeyID

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		profile.Role = role
		if wasJockey && role != models.RoleJockey {
			profile.JockeyID = nil
			profile.Jockey = nil
		}

		_, err := tx.NewUpdate().Model(profile).
			Column("role", "jockey_id").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update role for profile %d: %w", profile.ID, err)
		}

		if wasJockey && role != models.RoleJockey && oldJockeyID != nil {
			_, err := tx.NewDelete().Model((*models.Jockey)(nil)).
				Where("id = ?", *oldJockeyID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("remove jockey %d: %w", *oldJockeyID, err)
			}
		}

		if role == models.RoleJockey {
			return SyncJockey(ctx, tx, profile)
		}
		return nil
	})
}

// Delete removes the profile. When it carries the jockey role with a linked
// jockey, that record is deleted too. Transactional: both rows go or neither.
func Delete(ctx context.Context, db *bun.DB, profile *models.UserProfile) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.UserProfile)(nil)).
			Where("id = ?", profile.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete profile %d: %w", profile.ID, err)
		}

		if profile.IsJockey() && profile.JockeyID != nil {
			_, err := tx.NewDelete().Model((*models.Jockey)(nil)).
				Where("id = ?", *profile.JockeyID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("delete linked jockey %d: %w", *profile.JockeyID, err)
			}
		}
		return nil
	})
}

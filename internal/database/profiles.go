package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// --- Profile Queries ---
//
// A profile is created lazily on first login/signup, so GetProfileByUserID
// returning ErrNotFound is an expected state for a new user. Callers decide
// whether that means "no profile yet" (the session layer) or a real 404.

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged", matching the partial-update semantics of the admin UI.
type ProfileUpdate struct {
	FullName  *string
	Username  *string
	AvatarURL *string
	Phone     *string
	Location  *string
}

func (s *Service) CreateProfile(ctx context.Context, db DBorTx, userID, fullName, username string) (*Profile, error) {
	if err := ValidateID("user id", userID); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	query := `INSERT INTO profiles (id, user_id, full_name, username) VALUES (?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query, id, userID, fullName, username); err != nil {
		return nil, classify(err)
	}
	return s.GetProfileByUserID(ctx, db, userID)
}

func (s *Service) GetProfileByUserID(ctx context.Context, db DBorTx, userID string) (*Profile, error) {
	if err := ValidateID("user id", userID); err != nil {
		return nil, err
	}
	query := `SELECT id, user_id, full_name, username, avatar_url, phone, location, is_active, created_at
			  FROM profiles WHERE user_id = ?;`
	return scanProfile(db.QueryRowContext(ctx, query, userID))
}

func (s *Service) GetProfileByID(ctx context.Context, db DBorTx, id string) (*Profile, error) {
	if err := ValidateID("profile id", id); err != nil {
		return nil, err
	}
	query := `SELECT id, user_id, full_name, username, avatar_url, phone, location, is_active, created_at
			  FROM profiles WHERE id = ?;`
	return scanProfile(db.QueryRowContext(ctx, query, id))
}

func (s *Service) UpdateProfile(ctx context.Context, db DBorTx, userID string, upd ProfileUpdate) error {
	if err := ValidateID("user id", userID); err != nil {
		return err
	}

	// COALESCE keeps the stored value wherever the caller passed nil, so a
	// partial update is a single statement instead of assembled SQL.
	query := `UPDATE profiles SET
				full_name  = COALESCE(?, full_name),
				username   = COALESCE(?, username),
				avatar_url = COALESCE(?, avatar_url),
				phone      = COALESCE(?, phone),
				location   = COALESCE(?, location)
			  WHERE user_id = ?;`
	res, err := db.ExecContext(ctx, query,
		upd.FullName, upd.Username, upd.AvatarURL, upd.Phone, upd.Location, userID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProfileActive toggles the is_active flag. Deactivation is the preferred
// alternative to deletion everywhere in this system.
func (s *Service) SetProfileActive(ctx context.Context, db DBorTx, profileID string, active bool) error {
	if err := ValidateID("profile id", profileID); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE profiles SET is_active = ? WHERE id = ?;`, active, profileID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProfiles returns one page of profiles, newest first, plus the exact
// total count for pagination.
func (s *Service) ListProfiles(ctx context.Context, db DBorTx, limit, offset int) ([]*Profile, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles;`).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT id, user_id, full_name, username, avatar_url, phone, location, is_active, created_at
			  FROM profiles ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Username, &p.AvatarURL,
			&p.Phone, &p.Location, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, 0, classify(err)
		}
		profiles = append(profiles, p)
	}
	return profiles, total, classify(rows.Err())
}

func scanProfile(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Username, &p.AvatarURL,
		&p.Phone, &p.Location, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

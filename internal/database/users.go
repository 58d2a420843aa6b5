package database

import (
	"context"

	"github.com/google/uuid"
)

// --- User Queries ---

func (s *Service) CreateUser(ctx context.Context, db DBorTx, email, passwordHash string, isAdmin bool) (*User, error) {
	// An empty password hash is set to NULL in the DB for OAuth-only users.
	var hash interface{} = passwordHash
	if passwordHash == "" {
		hash = nil
	}
	id := uuid.NewString()
	query := `INSERT INTO users (id, email, password_hash, is_admin) VALUES (?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query, id, email, hash, isAdmin); err != nil {
		return nil, classify(err)
	}
	return s.GetUserByID(ctx, db, id)
}

func (s *Service) GetUserByID(ctx context.Context, db DBorTx, id string) (*User, error) {
	if err := ValidateID("user id", id); err != nil {
		return nil, err
	}
	query := `SELECT id, email, password_hash, is_admin, created_at FROM users WHERE id = ?;`
	user := &User{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, db DBorTx, email string) (*User, error) {
	query := `SELECT id, email, password_hash, is_admin, created_at FROM users WHERE email = ?;`
	user := &User{}
	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// UpdateUserPassword replaces the stored password hash for one user.
func (s *Service) UpdateUserPassword(ctx context.Context, db DBorTx, userID, passwordHash string) error {
	if err := ValidateID("user id", userID); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?;`, passwordHash, userID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

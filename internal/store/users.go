package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateUser(username, passwordHash string) (*User, error) {
	now := time.Now().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUser(id)
}

func (s *Store) GetUser(id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRow(userSelect+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns nil, nil when no such user exists.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(userSelect+` WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// GetUserByToken returns nil, nil when no user carries the token.
func (s *Store) GetUserByToken(token string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(userSelect+` WHERE auto_login_token = ?`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return u, nil
}

// SetUserToken stores an auto-login token and its expiry on the user row.
func (s *Store) SetUserToken(userID int64, token string, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE users SET auto_login_token = ?, token_expires_at = ? WHERE id = ?`,
		token, expiresAt.Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("set user token: %w", err)
	}
	return nil
}

// ClearUserToken removes any auto-login token from the user row.
func (s *Store) ClearUserToken(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET auto_login_token = NULL, token_expires_at = NULL WHERE id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear user token: %w", err)
	}
	return nil
}

const userSelect = `SELECT id, username, password_hash, auto_login_token, token_expires_at, created_at FROM users`

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	var token, expiresAt sql.NullString
	var createdAt string

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &token, &expiresAt, &createdAt)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		u.AutoLoginToken = token.String
	}
	if expiresAt.Valid {
		ts, _ := time.Parse(time.RFC3339, expiresAt.String)
		u.TokenExpiresAt = &ts
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

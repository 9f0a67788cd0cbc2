package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func (b *Backend) CreateUser(email, passwordHash string) (*UserRow, error) {
	id := newID()
	now := b.stamp()
	_, err := b.db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, strings.ToLower(email), passwordHash, now,
	)
	if isUnique(err) {
		return nil, fmt.Errorf("insert user %q: %w", email, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return b.GetUser(id)
}

func (b *Backend) GetUser(id string) (*UserRow, error) {
	return b.queryUser(`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (b *Backend) UserByEmail(email string) (*UserRow, error) {
	return b.queryUser(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, strings.ToLower(email))
}

func (b *Backend) queryUser(query string, arg string) (*UserRow, error) {
	u := &UserRow{}
	var createdAt string
	err := b.db.QueryRow(query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// RevokeToken records a token id as signed out until it would have expired.
func (b *Backend) RevokeToken(jti string, expiresAt time.Time) error {
	_, err := b.db.Exec(
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`, jti, formatTime(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	// Expired entries can no longer be presented.
	_, err = b.db.Exec(`DELETE FROM revoked_tokens WHERE expires_at < ?`, b.stamp())
	return err
}

func (b *Backend) IsRevoked(jti string) (bool, error) {
	var n int
	err := b.db.QueryRow(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"payment-collect-visa/internal/domain"
)

var ErrTokenNotFound = errors.New("token not found")

type PersonalAccessTokenRepository struct {
	db *sql.DB
}

func NewPersonalAccessTokenRepository(db *sql.DB) *PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{db: db}
}

// splitPlainToken splits "<id>|<secret>" tokens. Tokens without an id prefix
// are returned whole.
func splitPlainToken(plain string) (*int64, string) {
	idx := strings.Index(plain, "|")
	if idx <= 0 {
		return nil, plain
	}
	id, err := strconv.ParseInt(plain[:idx], 10, 64)
	if err != nil {
		return nil, plain[idx+1:]
	}
	return &id, plain[idx+1:]
}

func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("%x", sum)
}

func (r *PersonalAccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	tokenID, secret := splitPlainToken(plainToken)
	hash := hashToken(secret)
	now := time.Now()

	var pat domain.PersonalAccessToken
	if tokenID != nil {
		err := r.db.QueryRowContext(ctx, `
			SELECT id, token, user_id, abilities, expires_at
			FROM personal_access_tokens
			WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)
		`, *tokenID, now).Scan(&pat.ID, &pat.TokenHash, &pat.UserID, &pat.Abilities, &pat.ExpiresAt)
		switch {
		case err == nil && pat.TokenHash == hash:
			return &pat, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			log.Printf("[TOKEN] lookup by id=%d failed: %v", *tokenID, err)
		}
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, abilities, expires_at
		FROM personal_access_tokens
		WHERE token = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1
	`, hash, now).Scan(&pat.ID, &pat.TokenHash, &pat.UserID, &pat.Abilities, &pat.ExpiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[TOKEN] lookup by hash failed: %v", err)
		}
		return nil, ErrTokenNotFound
	}
	return &pat, nil
}

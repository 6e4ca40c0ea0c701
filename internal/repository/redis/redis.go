package redis

import (
	"campusEvents/domain"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("token not found or expired")

// TokenRepository keeps one active session per user plus a token -> user
// reverse lookup used on every authenticated request.
type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:user:%s", userID)
}

func lookupKey(token string) string {
	return fmt.Sprintf("session:token:%s", token)
}

// StoreToken replaces the user's session. A previous token stops validating.
func (r *TokenRepository) StoreToken(ctx context.Context, session domain.Session, ttl time.Duration) error {
	if prev, err := r.GetTokenData(ctx, session.UserID); err == nil && prev.Token != session.Token {
		if err := r.client.Del(ctx, lookupKey(prev.Token)).Err(); err != nil {
			return fmt.Errorf("failed to drop previous token lookup: %w", err)
		}
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.UserID), jsonData, ttl)
	pipe.Set(ctx, lookupKey(session.Token), session.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

// GetTokenData retrieve the session by user ID
func (r *TokenRepository) GetTokenData(ctx context.Context, userID string) (*domain.Session, error) {
	val, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// ValidateToken returns the user id bound to a live token.
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, lookupKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return userID, nil
}

// DeleteToken ends the session and invalidates the token.
func (r *TokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	if err := r.client.Del(ctx, sessionKey(userID), lookupKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

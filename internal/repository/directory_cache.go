package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// CachedDirectory is a read-through Redis cache in front of a Directory.
// Cache failures fall through to the backing directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory wraps next with a Redis cache. A nil client or zero ttl
// returns next unchanged.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, logger *zap.Logger) Directory {
	if client == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

type cachedUser struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	WhatsApp string      `json:"whatsapp"`
	Role     domain.Role `json:"role"`
	Active   bool        `json:"active"`
}

func (d *CachedDirectory) ResolveUser(ctx context.Context, id string) (*domain.User, error) {
	key := "directory:user:" + id
	var cached cachedUser
	if d.get(ctx, key, &cached) {
		return &domain.User{
			ID:       cached.ID,
			Name:     cached.Name,
			Email:    cached.Email,
			WhatsApp: cached.WhatsApp,
			Role:     cached.Role,
			Active:   cached.Active,
		}, nil
	}
	user, err := d.next.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}
	// password hashes stay out of the cache
	d.set(ctx, key, cachedUser{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		WhatsApp: user.WhatsApp,
		Role:     user.Role,
		Active:   user.Active,
	})
	return user, nil
}

func (d *CachedDirectory) ResolveStudent(ctx context.Context, id string) (*domain.Student, error) {
	key := "directory:student:" + id
	var cached domain.Student
	if d.get(ctx, key, &cached) {
		return &cached, nil
	}
	student, err := d.next.ResolveStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	d.set(ctx, key, student)
	return student, nil
}

func (d *CachedDirectory) get(ctx context.Context, key string, dest any) bool {
	raw, err := d.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.logger.Warn("directory cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		d.logger.Warn("directory cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (d *CachedDirectory) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := d.client.Set(ctx, key, raw, d.ttl).Err(); err != nil {
		d.logger.Warn("directory cache write failed", zap.String("key", key), zap.Error(err))
	}
}

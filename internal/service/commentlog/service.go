package commentlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"khrental/internal/domain"
	"khrental/internal/repository"
)

const defaultCacheTTL = 5 * time.Minute

// CacheKey is stamped with the request version the thread was read at.
// Every comment bumps the version, so a thread cached by a reader that lost
// a race with a writer sits under a key no later read will ask for.
func CacheKey(requestID uuid.UUID, version int64) string {
	return fmt.Sprintf("maintenance:comments:%s:v%d", requestID, version)
}

// Cache is the part of *redis.Client the thread cache needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Service interface {
	// Thread returns every comment of the request at the given version,
	// internal ones included.
	Thread(ctx context.Context, requestID uuid.UUID, version int64) ([]domain.Comment, error)
	// Invalidate drops the thread cached for a superseded version.
	Invalidate(ctx context.Context, requestID uuid.UUID, version int64)
}

type service struct {
	commentRepo repository.CommentRepository
	cache       Cache
	ttl         time.Duration
}

func NewService(commentRepo repository.CommentRepository, cache Cache, ttl time.Duration) Service {
	if client, ok := cache.(*redis.Client); ok && client == nil {
		cache = nil
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{
		commentRepo: commentRepo,
		cache:       cache,
		ttl:         ttl,
	}
}

func (s *service) Thread(ctx context.Context, requestID uuid.UUID, version int64) ([]domain.Comment, error) {
	cacheKey := CacheKey(requestID, version)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var comments []domain.Comment
			if json.Unmarshal([]byte(cached), &comments) == nil {
				return comments, nil
			}
		}
	}

	comments, err := s.commentRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(comments); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
				slog.Debug("comment thread cache write failed", "request_id", requestID, "error", err)
			}
		}
	}

	return comments, nil
}

func (s *service) Invalidate(ctx context.Context, requestID uuid.UUID, version int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, CacheKey(requestID, version)).Err()
}

package commentlog_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/mocks"
	"khrental/internal/service/commentlog"
)

var now = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

func author(role domain.Role) domain.CommentAuthor {
	return domain.CommentAuthor{ID: uuid.New(), Name: string(role) + " user", Role: role}
}

func TestAppend(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c, err := commentlog.Append("  Tap still drips  ", author(domain.RoleRentee), false, now)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, "Tap still drips", c.Content)
		assert.Equal(t, now, c.CreatedAt)
		assert.False(t, c.IsInternal)
	})

	t.Run("Empty Content", func(t *testing.T) {
		for _, content := range []string{"", "   ", "\n\t"} {
			_, err := commentlog.Append(content, author(domain.RoleStaff), true, now)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("Too Long", func(t *testing.T) {
		_, err := commentlog.Append(strings.Repeat("a", commentlog.MaxContentLength+1), author(domain.RoleAdmin), false, now)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func thread() []domain.Comment {
	rentee, _ := commentlog.Append("Water under the sink", author(domain.RoleRentee), false, now)
	staff, _ := commentlog.Append("Likely the trap seal", author(domain.RoleStaff), true, now.Add(time.Minute))
	return []domain.Comment{rentee, staff}
}

func TestVisibleTo(t *testing.T) {
	comments := thread()

	rentee := commentlog.VisibleTo(comments, domain.RoleRentee)
	require.Len(t, rentee, 1)
	assert.False(t, rentee[0].IsInternal)

	requester := commentlog.VisibleTo(comments, domain.RoleRequester)
	assert.Len(t, requester, 1)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStaff, domain.RoleMaintenance} {
		all := commentlog.VisibleTo(comments, role)
		require.Len(t, all, 2)
		assert.Equal(t, comments[0].ID, all[0].ID)
		assert.Equal(t, comments[1].ID, all[1].ID)
	}

	assert.Len(t, comments, 2, "input must not be filtered in place")
}

// memoryCache is a map-backed stand-in for the redis client.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func TestService_ThreadWithoutCache(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	repo := new(mocks.CommentRepository)
	svc := commentlog.NewService(repo, nil, 0)

	repo.On("ListByRequest", ctx, requestID).Return(thread(), nil).Twice()

	for i := 0; i < 2; i++ {
		comments, err := svc.Thread(ctx, requestID, 3)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
	}
	repo.AssertExpectations(t)
}

func TestService_ThreadIsCachedPerVersion(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	repo := new(mocks.CommentRepository)
	cache := newMemoryCache()
	svc := commentlog.NewService(repo, cache, time.Minute)

	repo.On("ListByRequest", ctx, requestID).Return(thread(), nil).Once()

	first, err := svc.Thread(ctx, requestID, 3)
	require.NoError(t, err)
	second, err := svc.Thread(ctx, requestID, 3)
	require.NoError(t, err)

	assert.Equal(t, first[1].ID, second[1].ID)
	assert.True(t, second[1].IsInternal)
	assert.True(t, cache.has(commentlog.CacheKey(requestID, 3)))
	repo.AssertExpectations(t)
}

// A reader that loaded version 3 can write its thread after the writer that
// produced version 4 has invalidated. Readers of version 4 must not see it.
func TestService_LateStaleWriteIsNotServed(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	repo := new(mocks.CommentRepository)
	cache := newMemoryCache()
	svc := commentlog.NewService(repo, cache, time.Hour)

	before := thread()[:1]
	after := thread()
	repo.On("ListByRequest", ctx, requestID).Return(before, nil).Once()
	repo.On("ListByRequest", ctx, requestID).Return(after, nil).Once()

	svc.Invalidate(ctx, requestID, 3)
	stale, err := svc.Thread(ctx, requestID, 3)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.True(t, cache.has(commentlog.CacheKey(requestID, 3)))

	fresh, err := svc.Thread(ctx, requestID, 4)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	repo.AssertExpectations(t)
}

func TestService_InvalidateDropsSupersededVersion(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	repo := new(mocks.CommentRepository)
	cache := newMemoryCache()
	svc := commentlog.NewService(repo, cache, time.Minute)

	repo.On("ListByRequest", ctx, requestID).Return(thread(), nil).Once()
	_, err := svc.Thread(ctx, requestID, 5)
	require.NoError(t, err)

	svc.Invalidate(ctx, requestID, 5)
	assert.False(t, cache.has(commentlog.CacheKey(requestID, 5)))
}

func TestService_ThreadError(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	repo := new(mocks.CommentRepository)
	svc := commentlog.NewService(repo, nil, time.Minute)

	repo.On("ListByRequest", ctx, requestID).Return(nil, domain.StorageError("list", assert.AnError)).Once()

	_, err := svc.Thread(ctx, requestID, 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestCacheKey(t *testing.T) {
	id := uuid.MustParse("7b6c2a4e-1f2d-4c55-9a55-2c0f1f9f3b11")
	assert.Equal(t, "maintenance:comments:7b6c2a4e-1f2d-4c55-9a55-2c0f1f9f3b11:v7", commentlog.CacheKey(id, 7))
	assert.NotEqual(t, commentlog.CacheKey(id, 7), commentlog.CacheKey(id, 8))
}

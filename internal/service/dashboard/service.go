package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"khrental/internal/domain"
	"khrental/internal/repository"
)

// StatsCacheKey is dropped by the lifecycle engine after every mutation.
const StatsCacheKey = "maintenance:dashboard:stats"

type Stats struct {
	Total          int64                          `json:"total"`
	ByStatus       map[domain.RequestStatus]int64 `json:"by_status"`
	Open           int64                          `json:"open"`
	OpenEmergency  int64                          `json:"open_emergency"`
	LastActivityAt *time.Time                     `json:"last_activity_at"`
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	requestRepo repository.MaintenanceRequestRepository
	redis       *redis.Client
	ttl         time.Duration
}

func NewService(requestRepo repository.MaintenanceRequestRepository, redis *redis.Client, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		requestRepo: requestRepo,
		redis:       redis,
		ttl:         ttl,
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, StatsCacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	emergency, err := s.requestRepo.CountOpenByPriority(ctx, domain.PriorityEmergency)
	if err != nil {
		return nil, err
	}

	lastActivity, _ := s.requestRepo.GetLastActivityAt(ctx)

	stats := &Stats{
		ByStatus:       make(map[domain.RequestStatus]int64, 5),
		OpenEmergency:  emergency,
		LastActivityAt: lastActivity,
	}
	for _, status := range []domain.RequestStatus{
		domain.StatusPending, domain.StatusAssigned, domain.StatusInProgress,
		domain.StatusCompleted, domain.StatusCancelled,
	} {
		count := byStatus[status]
		stats.ByStatus[status] = count
		stats.Total += count
		if !status.IsTerminal() {
			stats.Open += count
		}
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, StatsCacheKey, statsJSON, s.ttl).Err()
		}
	}

	return stats, nil
}

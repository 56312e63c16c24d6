package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "taskdeck/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "task:u"

// TaskCache caches per-user task listings and progress aggregates in Redis.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached listing for the filter, or nil on miss.
func (c *TaskCache) GetList(ctx context.Context, userID int64, f dom.Filter) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, f)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the listing for the filter.
func (c *TaskCache) SetList(ctx context.Context, userID int64, f dom.Filter, list []dom.Task) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, f), b, c.ttl).Err()
}

// GetProgress returns the cached aggregate, or nil on miss.
func (c *TaskCache) GetProgress(ctx context.Context, userID int64) (*dom.Progress, error) {
	b, err := c.rdb.Get(ctx, progressKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p dom.Progress
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProgress stores the aggregate.
func (c *TaskCache) SetProgress(ctx context.Context, userID int64, p dom.Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, progressKey(userID), b, c.ttl).Err()
}

// InvalidateUser removes every cached key for the user (cache invalidation on write).
func (c *TaskCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := userPrefix(userID) + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func userPrefix(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":"
}

func listKey(userID int64, f dom.Filter) string {
	return userPrefix(userID) + "list:" + FilterKey(f)
}

func progressKey(userID int64) string {
	return userPrefix(userID) + "progress"
}

// FilterKey renders a filter as a stable cache key fragment.
func FilterKey(f dom.Filter) string {
	if f.IsZero() {
		return "all"
	}
	var parts []string
	if f.Overdue {
		parts = append(parts, "overdue")
	}
	if f.Today {
		parts = append(parts, "today")
	}
	if f.UpcomingDays != nil {
		parts = append(parts, "upcoming:"+strconv.Itoa(*f.UpcomingDays))
	}
	return strings.Join(parts, ",")
}

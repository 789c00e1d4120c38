package employee

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EmployeeOptionsKey = "employees:options"
	EmployeeOptionsTTL = 1 * time.Hour
)

// InvalidateOptionsCache drops the cached picker list. Failures are logged
// and swallowed; the entry expires on its own.
func InvalidateOptionsCache(ctx context.Context, rdb *redis.Client, logger *zap.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func (s *service) cachedOptions(ctx context.Context) ([]EmployeeOption, bool) {
	if s.rdb == nil {
		return nil, false
	}
	cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result()
	if err != nil {
		return nil, false
	}
	var resp []EmployeeOption
	if json.Unmarshal([]byte(cached), &resp) != nil {
		return nil, false
	}
	return resp, true
}

func (s *service) storeOptions(ctx context.Context, resp []EmployeeOption) {
	if s.rdb == nil {
		return
	}
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, EmployeeOptionsTTL).Err(); err != nil {
		s.logger.Warn("store employee options cache failed", zap.Error(err))
	}
}

package funtask

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	LeaderboardKey      = "fun_tasks:leaderboard"
	leaderboardSeenKey  = "fun_tasks:leaderboard:seen:"
	leaderboardSeenTTL  = 7 * 24 * time.Hour
	leaderboardBuiltKey = "fun_tasks:leaderboard:rebuilt_at"
	DefaultLeaderboardN = 10
	MaxLeaderboardN     = 100
)

// DefaultLeaderboardSync is how often Sync rebuilds the sorted set when no
// interval is given.
const DefaultLeaderboardSync = 10 * time.Minute

// Leaderboard ranks employees by fun task points. Redis holds a sorted set fed
// by fun_task.completed events and rebuilt from the employees table by Sync;
// the employees table is also the fallback when Redis is unavailable.
type Leaderboard struct {
	rdb    *redis.Client
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewLeaderboard(rdb *redis.Client, repo Repository, logger ...*zap.Logger) *Leaderboard {
	l := zap.L().Named("funtask.leaderboard")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("funtask.leaderboard")
	}
	return &Leaderboard{rdb: rdb, repo: repo, logger: l, now: time.Now}
}

func (b *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardN
	}
	if limit > MaxLeaderboardN {
		limit = MaxLeaderboardN
	}

	if entries, ok := b.fromRedis(ctx, limit); ok {
		return entries, nil
	}
	return b.repo.TopByPoints(ctx, limit)
}

func (b *Leaderboard) fromRedis(ctx context.Context, limit int) ([]LeaderboardEntry, bool) {
	if b.rdb == nil {
		return nil, false
	}

	scores, err := b.rdb.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		b.logger.Warn("leaderboard redis read failed, using database", zap.Error(err))
		return nil, false
	}
	if len(scores) == 0 {
		return nil, false
	}

	ids := make([]string, len(scores))
	for i, z := range scores {
		ids[i], _ = z.Member.(string)
	}
	names, err := b.repo.EmployeeNames(ctx, ids)
	if err != nil {
		b.logger.Warn("leaderboard name lookup failed, using database", zap.Error(err))
		return nil, false
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, z := range scores {
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			EmployeeID: ids[i],
			Name:       names[ids[i]],
			Points:     int64(z.Score),
		})
	}
	return entries, true
}

// Record adds points for one completion event. Replayed events and events
// already counted by the last rebuild are ignored; the returned bool reports
// whether the score changed.
func (b *Leaderboard) Record(ctx context.Context, eventID, employeeID string, points int, completedAt time.Time) (bool, error) {
	covered, err := b.coveredByRebuild(ctx, completedAt)
	if err != nil {
		return false, err
	}
	if covered {
		b.logger.Debug("leaderboard event predates rebuild", zap.String("event_id", eventID))
		return false, nil
	}

	fresh, err := b.rdb.SetNX(ctx, leaderboardSeenKey+eventID, 1, leaderboardSeenTTL).Result()
	if err != nil {
		return false, err
	}
	if !fresh {
		b.logger.Debug("leaderboard event already applied", zap.String("event_id", eventID))
		return false, nil
	}

	if err := b.rdb.ZIncrBy(ctx, LeaderboardKey, float64(points), employeeID).Err(); err != nil {
		// Release the marker so a redelivery can apply the points.
		b.rdb.Del(ctx, leaderboardSeenKey+eventID)
		return false, err
	}
	return true, nil
}

func (b *Leaderboard) coveredByRebuild(ctx context.Context, completedAt time.Time) (bool, error) {
	if completedAt.IsZero() {
		return false, nil
	}
	builtAt, err := b.rdb.Get(ctx, leaderboardBuiltKey).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return completedAt.UnixNano() <= builtAt, nil
}

// Rebuild replaces the sorted set with the points stored in the employees
// table and records when the snapshot was taken. Completions whose commit
// lands after the snapshot read but carry an earlier timestamp are picked
// up by the next rebuild.
func (b *Leaderboard) Rebuild(ctx context.Context) (int, error) {
	if b.rdb == nil {
		return 0, nil
	}

	entries, err := b.repo.TopByPoints(ctx, 0)
	if err != nil {
		return 0, err
	}
	builtAt := b.now().UnixNano()

	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.Points), Member: e.EmployeeID}
	}

	_, err = b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, LeaderboardKey)
		if len(members) > 0 {
			pipe.ZAdd(ctx, LeaderboardKey, members...)
		}
		pipe.Set(ctx, leaderboardBuiltKey, builtAt, 0)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Sync rebuilds the sorted set immediately and then every interval until ctx
// is cancelled.
func (b *Leaderboard) Sync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultLeaderboardSync
	}

	b.rebuildAndLog(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("leaderboard sync stopped")
			return
		case <-ticker.C:
			b.rebuildAndLog(ctx)
		}
	}
}

func (b *Leaderboard) rebuildAndLog(ctx context.Context) {
	n, err := b.Rebuild(ctx)
	if err != nil {
		if ctx.Err() == nil {
			b.logger.Error("leaderboard rebuild failed", zap.Error(err))
		}
		return
	}
	b.logger.Info("leaderboard rebuilt", zap.Int("employees", n))
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CleanupService handles data retention for evaluations.
type CleanupService struct {
	Pool          PgxPool
	RetentionDays int
}

// NewCleanupService creates a new cleanup service; non-positive retention means 90 days.
func NewCleanupService(pool PgxPool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays}
}

// CleanupOldData removes evaluations older than the retention period.
// Ideal answers are reference material and are kept.
func (s *CleanupService) CleanupOldData(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)
	tag, err := s.Pool.Exec(ctx, `DELETE FROM evaluations WHERE created_at < $1 AND is_ideal = FALSE`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=cleanup.evaluations: %w", err)
	}
	n := tag.RowsAffected()
	slog.Info("data cleanup completed",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted_evaluations", n),
		slog.Int("retention_days", s.RetentionDays))
	return n, nil
}

// DefaultCleanupInterval applies when RunPeriodic gets a non-positive interval.
const DefaultCleanupInterval = 24 * time.Hour

// RunPeriodic runs cleanup on the given interval until ctx is done.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}

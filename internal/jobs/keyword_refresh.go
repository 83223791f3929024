package jobs

import (
	"context"
	"log/slog"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/service"
)

// KeywordRefreshJob is the job name of the keyword metrics refresh.
const KeywordRefreshJob = "keyword_metrics_refresh"

// MetricsRefresher refreshes stored keyword metrics. service.KeywordService
// satisfies it.
type MetricsRefresher interface {
	RefreshMetrics(ctx context.Context) (service.RefreshSummary, error)
}

// RegisterKeywordRefresh schedules the metrics refresh when keyword research
// is configured. It reports whether the job was added.
func RegisterKeywordRefresh(s *Scheduler, cfg config.KeywordsConfig, refresher MetricsRefresher) (bool, error) {
	if !cfg.Enabled() {
		s.logger.Info("keyword research not configured, metrics refresh disabled")
		return false, nil
	}
	err := s.Add(KeywordRefreshJob, cfg.RefreshSchedule, func(ctx context.Context) error {
		summary, err := refresher.RefreshMetrics(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("keyword metrics refresh summary",
			slog.Int("updated", summary.Updated),
			slog.Int("skipped", summary.Skipped),
			slog.Int("failed", summary.Failed))
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/stablepay/gateway/pkg/domain/ofac/services"
	"github.com/stablepay/gateway/pkg/infra/metrics"
)

const ofacRefreshInterval = 24 * time.Hour

// OfacRefreshJob runs the SDN feed ingestion once daily at 00:00 UTC. The
// first run is scheduled for the next midnight rather than immediately:
// StartupRefreshIfEmpty (called separately at process start) already
// covers the empty-database case.
type OfacRefreshJob struct {
	service *services.Service
	timer   *time.Timer
	ticker  *time.Ticker
	cancel  context.CancelFunc
	logger  *slog.Logger
}

func NewOfacRefreshJob(service *services.Service) *OfacRefreshJob {
	return &OfacRefreshJob{
		service: service,
		logger:  slog.Default().With("component", "ofac_refresh_job"),
	}
}

func (j *OfacRefreshJob) Start(ctx context.Context) {
	if j.timer != nil || j.ticker != nil {
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.timer = time.NewTimer(durationUntilNextMidnightUTC())

	go func() {
		select {
		case <-jobCtx.Done():
			return
		case <-j.timer.C:
			j.run(jobCtx)
		}

		j.ticker = time.NewTicker(ofacRefreshInterval)
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-j.ticker.C:
				j.run(jobCtx)
			}
		}
	}()
}

func (j *OfacRefreshJob) Stop() {
	if j.timer == nil && j.ticker == nil {
		return
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	if j.ticker != nil {
		j.ticker.Stop()
	}
	j.cancel()
	j.timer = nil
	j.ticker = nil
}

func (j *OfacRefreshJob) run(ctx context.Context) {
	if err := j.service.Refresh(ctx); err != nil {
		metrics.OfacRefreshRuns.WithLabelValues("failure").Inc()
		j.logger.Error("ofac refresh failed", "error", err)
		return
	}
	metrics.OfacRefreshRuns.WithLabelValues("success").Inc()

	if status, err := j.service.Status(ctx); err == nil {
		metrics.OfacAddressesTotal.Set(float64(status.TotalAddresses))
	}
	j.logger.Info("ofac refresh complete")
}

func durationUntilNextMidnightUTC() time.Duration {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return next.Sub(now)
}

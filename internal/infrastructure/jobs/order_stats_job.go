package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api/metrics"
	"github.com/99minutos/order-tracking/internal/core/domain"
)

const statsTimeout = 30 * time.Second

// StatusCounter reports how many orders are in each status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

// OrderStatsJob periodically refreshes the orders-by-status gauge.
type OrderStatsJob struct {
	counter  StatusCounter
	schedule string
	cron     *cron.Cron
	log      zerolog.Logger
}

// NewOrderStatsJob accepts a six-field cron spec or a descriptor such as
// "@every 1m".
func NewOrderStatsJob(counter StatusCounter, schedule string, log zerolog.Logger) *OrderStatsJob {
	return &OrderStatsJob{
		counter:  counter,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		log:      log.With().Str("component", "order_stats_job").Logger(),
	}
}

// Start refreshes the gauge once and then on every tick of the schedule.
func (j *OrderStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}
	j.Run()
	j.cron.Start()
	j.log.Info().Str("schedule", j.schedule).Msg("order stats job started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to expire.
func (j *OrderStatsJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	j.log.Info().Msg("order stats job stopped")
}

// Run performs one refresh. Statuses with no orders are reported as zero.
func (j *OrderStatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	counts, err := j.counter.CountByStatus(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("order stats refresh failed")
		return
	}
	for _, st := range domain.OrderStatuses {
		metrics.OrdersByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}

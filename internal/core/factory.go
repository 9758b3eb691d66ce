package core

import (
	"time"

	"gardencore/internal/config"
	"gardencore/internal/infra/persistence/memory"
	"gardencore/internal/logger"
	"gardencore/pkg/domain"
)

// NewServiceFromConfig assembles a fully wired booking service: rules engine
// with the configured quota, in-memory store with the configured reservation
// ID prefix, JSON logger, and the selected metrics exporter.
func NewServiceFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	engine := domain.NewRulesEngine()
	engine.Register(NewStatusTransitionRule())
	engine.Register(NewReservationConflictRule())
	engine.Register(NewGardenerQuotaRule(cfg.Booking.MaxActiveReservations))

	base := []Option{
		WithQuota(cfg.Booking.MaxActiveReservations),
		WithLogger(logger.New(cfg.Logging)),
	}
	switch cfg.Metrics.Exporter {
	case "expvar":
		base = append(base, WithMetricsRecorder(NewExpvarMetricsRecorder("")))
	case "prometheus":
		recorder, err := NewPrometheusMetricsRecorder(nil)
		if err != nil {
			return nil, err
		}
		base = append(base, WithMetricsRecorder(recorder))
	}

	svc := NewService(nil, append(base, opts...)...)
	svc.store = memory.NewStore(engine,
		memory.WithNowFunc(func() time.Time { return svc.clock() }),
		memory.WithReservationIDPrefix(cfg.Booking.ReservationIDPrefix),
	)
	return svc, nil
}

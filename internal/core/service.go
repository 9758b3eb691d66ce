package core

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gardencore/internal/infra/persistence/memory"
	"gardencore/pkg/domain"
)

// Service exposes the transactional booking operations for community garden
// plots. Business-rule rejections surface as typed errors; the rules engine
// inside the store acts as the commit-time backstop for the same invariants.
type Service struct {
	store   *memory.Store
	quota   int
	clock   func() time.Time
	logger  *slog.Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
}

// Option configures optional service behavior.
type Option func(*Service)

// WithQuota overrides the maximum number of active reservations per gardener.
func WithQuota(quota int) Option {
	return func(s *Service) {
		if quota > 0 {
			s.quota = quota
		}
	}
}

// WithClock overrides the time source used for occupancy queries and for
// entity timestamps when the service owns the store.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics sink invoked once per operation.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		s.metrics = recorder
	}
}

// WithTracer attaches a tracer that spans every operation.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithAuditRecorder attaches an audit sink receiving one entry per operation.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store *memory.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		quota:  DefaultGardenerQuota,
		clock:  func() time.Time { return time.Now().UTC() },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine. The service clock also drives the store's timestamps.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	s := NewService(nil, opts...)
	s.store = memory.NewStore(engine, memory.WithNowFunc(func() time.Time { return s.clock() }))
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() *memory.Store {
	return s.store
}

// instrument wraps one operation with tracing, metrics, audit and logging.
func (s *Service) instrument(ctx context.Context, operation string, entity EntityType, fn func(ctx context.Context) (string, error)) error {
	started := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}

	entityID, err := fn(ctx)
	elapsed := time.Since(started)

	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, elapsed)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation:  operation,
			Status:     AuditStatusSuccess,
			Entity:     entity,
			EntityID:   entityID,
			Duration:   elapsed,
			OccurredAt: time.Now().UTC(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "operation rejected", "operation", operation, "entity_id", entityID, "error", err)
	} else {
		s.logger.DebugContext(ctx, "operation completed", "operation", operation, "entity_id", entityID)
	}
	return err
}

// AddPlot registers a new plot. A blank ID is backfilled; a duplicate ID is
// rejected without touching existing state.
func (s *Service) AddPlot(ctx context.Context, plot Plot) (Plot, Result, error) {
	var created Plot
	var res Result
	err := s.instrument(ctx, "add_plot", EntityPlot, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreatePlot(plot)
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdatePlot mutates a plot using the provided mutator.
func (s *Service) UpdatePlot(ctx context.Context, id string, mutator func(*Plot) error) (Plot, Result, error) {
	var updated Plot
	var res Result
	err := s.instrument(ctx, "update_plot", EntityPlot, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindPlot(id); !ok {
				return ErrNotFound{Entity: EntityPlot, ID: id}
			}
			var txErr error
			updated, txErr = tx.UpdatePlot(id, mutator)
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// RemovePlot deletes a plot. Removal fails while any pending or confirmed
// reservation still references the plot.
func (s *Service) RemovePlot(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "remove_plot", EntityPlot, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindPlot(id); !ok {
				return ErrNotFound{Entity: EntityPlot, ID: id}
			}
			return tx.DeletePlot(id)
		})
		return id, err
	})
	return res, err
}

// RegisterGardener registers a new gardener.
func (s *Service) RegisterGardener(ctx context.Context, gardener Gardener) (Gardener, Result, error) {
	var created Gardener
	var res Result
	err := s.instrument(ctx, "register_gardener", EntityGardener, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateGardener(gardener)
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateGardener mutates a gardener using the provided mutator.
func (s *Service) UpdateGardener(ctx context.Context, id string, mutator func(*Gardener) error) (Gardener, Result, error) {
	var updated Gardener
	var res Result
	err := s.instrument(ctx, "update_gardener", EntityGardener, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindGardener(id); !ok {
				return ErrNotFound{Entity: EntityGardener, ID: id}
			}
			var txErr error
			updated, txErr = tx.UpdateGardener(id, mutator)
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// RemoveGardener deletes a gardener. Removal fails while the gardener holds
// any active reservation.
func (s *Service) RemoveGardener(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "remove_gardener", EntityGardener, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindGardener(id); !ok {
				return ErrNotFound{Entity: EntityGardener, ID: id}
			}
			return tx.DeleteGardener(id)
		})
		return id, err
	})
	return res, err
}

// CreateReservation requests a plot for a date range. The reservation starts
// pending after passing the existence, quota, availability and crop checks.
// A pending reservation never blocks another pending request for the same
// range; exclusivity is enforced at confirmation.
func (s *Service) CreateReservation(ctx context.Context, plotID, gardenerID string, interval Interval, plan ...Crop) (Reservation, Result, error) {
	var created Reservation
	var res Result
	err := s.instrument(ctx, "create_reservation", EntityReservation, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			plot, ok := tx.FindPlot(domain.TrimID(plotID))
			if !ok {
				return ErrNotFound{Entity: EntityPlot, ID: plotID}
			}
			gardener, ok := tx.FindGardener(domain.TrimID(gardenerID))
			if !ok {
				return ErrNotFound{Entity: EntityGardener, ID: gardenerID}
			}
			if interval.IsZero() {
				return domain.ErrInvalidRange
			}

			active := activeReservationCount(tx.Snapshot(), gardener.ID)
			if active >= s.quota {
				return QuotaExceededError{GardenerID: gardener.ID, Active: active, Quota: s.quota}
			}

			schedule, _ := tx.PlotSchedule(plot.ID)
			if !schedule.IsAvailable(interval) {
				return PlotUnavailableError{
					PlotID:      plot.ID,
					Interval:    interval,
					ConflictIDs: occupyingConflictIDs(schedule, interval, ""),
				}
			}

			for _, crop := range plan {
				if !plot.Allows(crop) {
					return CropNotAllowedError{PlotID: plot.ID, Crop: crop.Name}
				}
			}

			var txErr error
			created, txErr = tx.CreateReservation(Reservation{
				PlotID:       plot.ID,
				GardenerID:   gardener.ID,
				Interval:     interval,
				PlantingPlan: plan,
			})
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// ConfirmReservation moves a pending reservation to confirmed. Availability
// is re-checked: when two pending reservations race for the same range, the
// first confirmation wins and the second fails with PlotUnavailableError.
func (s *Service) ConfirmReservation(ctx context.Context, id string) (Reservation, Result, error) {
	return s.transitionReservation(ctx, "confirm_reservation", id, StatusConfirmed, func(tx Transaction, reservation Reservation) error {
		schedule, ok := tx.PlotSchedule(reservation.PlotID)
		if !ok {
			return ErrNotFound{Entity: EntityPlot, ID: reservation.PlotID}
		}
		if conflicts := occupyingConflictIDs(schedule, reservation.Interval, reservation.ID); len(conflicts) > 0 {
			return PlotUnavailableError{
				PlotID:      reservation.PlotID,
				Interval:    reservation.Interval,
				ConflictIDs: conflicts,
			}
		}
		return nil
	})
}

// CancelReservation moves a pending or confirmed reservation to cancelled.
func (s *Service) CancelReservation(ctx context.Context, id string) (Reservation, Result, error) {
	return s.transitionReservation(ctx, "cancel_reservation", id, StatusCancelled, nil)
}

// CompleteReservation moves a confirmed reservation to completed.
func (s *Service) CompleteReservation(ctx context.Context, id string) (Reservation, Result, error) {
	return s.transitionReservation(ctx, "complete_reservation", id, StatusCompleted, nil)
}

func (s *Service) transitionReservation(ctx context.Context, operation, id string, target ReservationStatus, precheck func(Transaction, Reservation) error) (Reservation, Result, error) {
	var updated Reservation
	var res Result
	err := s.instrument(ctx, operation, EntityReservation, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			reservation, ok := tx.FindReservation(id)
			if !ok {
				return ErrNotFound{Entity: EntityReservation, ID: id}
			}
			if !reservation.Status.CanTransitionTo(target) {
				return TransitionError{ReservationID: id, From: reservation.Status, To: target}
			}
			if precheck != nil {
				if err := precheck(tx, reservation); err != nil {
					return err
				}
			}
			var txErr error
			updated, txErr = tx.UpdateReservation(id, func(r *Reservation) error {
				r.Status = target
				return nil
			})
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// BookPlot creates a reservation and immediately confirms it. The two steps
// run in separate transactions; if the confirmation fails, the reservation is
// left pending and returned alongside the error.
func (s *Service) BookPlot(ctx context.Context, plotID, gardenerID string, interval Interval, plan ...Crop) (Reservation, Result, error) {
	created, res, err := s.CreateReservation(ctx, plotID, gardenerID, interval, plan...)
	if err != nil {
		return created, res, err
	}
	confirmed, res, err := s.ConfirmReservation(ctx, created.ID)
	if err != nil {
		return created, res, err
	}
	return confirmed, res, nil
}

// AddCropToReservation appends a crop to the planting plan. Duplicate crop
// names are absorbed. The plan stays editable at any status and is never
// re-validated against the plot.
func (s *Service) AddCropToReservation(ctx context.Context, id string, crop Crop) (Reservation, Result, error) {
	return s.updatePlantingPlan(ctx, "add_crop", id, func(r *Reservation) error {
		r.AddCrop(crop)
		return nil
	})
}

// RemoveCropFromReservation removes the named crop from the planting plan.
// Removing an absent crop is a no-op.
func (s *Service) RemoveCropFromReservation(ctx context.Context, id, cropName string) (Reservation, Result, error) {
	return s.updatePlantingPlan(ctx, "remove_crop", id, func(r *Reservation) error {
		r.RemoveCrop(Crop{Name: cropName})
		return nil
	})
}

// ClearPlantingPlan empties the reservation's planting plan.
func (s *Service) ClearPlantingPlan(ctx context.Context, id string) (Reservation, Result, error) {
	return s.updatePlantingPlan(ctx, "clear_planting_plan", id, func(r *Reservation) error {
		r.ClearPlantingPlan()
		return nil
	})
}

func (s *Service) updatePlantingPlan(ctx context.Context, operation, id string, mutator func(*Reservation) error) (Reservation, Result, error) {
	var updated Reservation
	var res Result
	err := s.instrument(ctx, operation, EntityReservation, func(ctx context.Context) (string, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindReservation(id); !ok {
				return ErrNotFound{Entity: EntityReservation, ID: id}
			}
			var txErr error
			updated, txErr = tx.UpdateReservation(id, mutator)
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// GetPlot retrieves a plot by ID.
func (s *Service) GetPlot(ctx context.Context, id string) (Plot, error) {
	plot, ok := s.store.GetPlot(id)
	if !ok {
		return Plot{}, ErrNotFound{Entity: EntityPlot, ID: id}
	}
	return plot, nil
}

// GetGardener retrieves a gardener by ID.
func (s *Service) GetGardener(ctx context.Context, id string) (Gardener, error) {
	gardener, ok := s.store.GetGardener(id)
	if !ok {
		return Gardener{}, ErrNotFound{Entity: EntityGardener, ID: id}
	}
	return gardener, nil
}

// GetReservation retrieves a reservation by ID.
func (s *Service) GetReservation(ctx context.Context, id string) (Reservation, error) {
	reservation, ok := s.store.GetReservation(id)
	if !ok {
		return Reservation{}, ErrNotFound{Entity: EntityReservation, ID: id}
	}
	return reservation, nil
}

// ListPlots returns all plots ordered by ID.
func (s *Service) ListPlots(ctx context.Context) []Plot {
	return s.store.ListPlots()
}

// ListGardeners returns all gardeners ordered by ID.
func (s *Service) ListGardeners(ctx context.Context) []Gardener {
	return s.store.ListGardeners()
}

// ListReservations returns all reservations in creation order.
func (s *Service) ListReservations(ctx context.Context) []Reservation {
	return s.store.ListReservations()
}

// ActiveReservations returns every pending or confirmed reservation.
func (s *Service) ActiveReservations(ctx context.Context) []Reservation {
	var out []Reservation
	for _, r := range s.store.ListReservations() {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

// ReservationsForGardener returns the gardener's reservations, including
// terminal ones, in creation order.
func (s *Service) ReservationsForGardener(ctx context.Context, gardenerID string) ([]Reservation, error) {
	var out []Reservation
	err := s.store.View(ctx, func(view TransactionView) error {
		if _, ok := view.FindGardener(gardenerID); !ok {
			return ErrNotFound{Entity: EntityGardener, ID: gardenerID}
		}
		for _, r := range view.ListReservations() {
			if r.GardenerID == gardenerID {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReservationsForPlot returns the plot's reservations, including terminal
// ones, in creation order.
func (s *Service) ReservationsForPlot(ctx context.Context, plotID string) ([]Reservation, error) {
	var out []Reservation
	err := s.store.View(ctx, func(view TransactionView) error {
		if _, ok := view.FindPlot(plotID); !ok {
			return ErrNotFound{Entity: EntityPlot, ID: plotID}
		}
		for _, r := range view.ListReservations() {
			if r.PlotID == plotID {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsPlotAvailable reports whether the plot is free of confirmed reservations
// over the given date range.
func (s *Service) IsPlotAvailable(ctx context.Context, plotID string, interval Interval) (bool, error) {
	var available bool
	err := s.store.View(ctx, func(view TransactionView) error {
		schedule, ok := view.PlotSchedule(plotID)
		if !ok {
			return ErrNotFound{Entity: EntityPlot, ID: plotID}
		}
		available = schedule.IsAvailable(interval)
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}

// FindAvailablePlots returns all plots free over the date range that also
// allow every supplied crop, ordered by ID.
func (s *Service) FindAvailablePlots(ctx context.Context, interval Interval, crops ...Crop) ([]Plot, error) {
	var out []Plot
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, plot := range view.ListPlots() {
			schedule, ok := view.PlotSchedule(plot.ID)
			if !ok || !schedule.IsAvailable(interval) {
				continue
			}
			allowed := true
			for _, crop := range crops {
				if !plot.Allows(crop) {
					allowed = false
					break
				}
			}
			if allowed {
				out = append(out, plot)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlotOccupant resolves the confirmed reservation occupying the plot today,
// if any. Occupancy is derived from the schedule, never stored.
func (s *Service) PlotOccupant(ctx context.Context, plotID string) (Reservation, bool, error) {
	var occupant Reservation
	var occupied bool
	err := s.store.View(ctx, func(view TransactionView) error {
		schedule, ok := view.PlotSchedule(plotID)
		if !ok {
			return ErrNotFound{Entity: EntityPlot, ID: plotID}
		}
		now := s.clock()
		for _, r := range schedule.Reservations {
			if r.IsCurrentlyActive(now) {
				occupant = r
				occupied = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return Reservation{}, false, err
	}
	return occupant, occupied, nil
}

func activeReservationCount(view TransactionView, gardenerID string) int {
	count := 0
	for _, r := range view.ListReservations() {
		if r.GardenerID == gardenerID && r.IsActive() {
			count++
		}
	}
	return count
}

// occupyingConflictIDs lists confirmed reservations overlapping the interval,
// skipping excludeID so a reservation never conflicts with itself.
func occupyingConflictIDs(schedule PlotSchedule, interval Interval, excludeID string) []string {
	var ids []string
	for _, r := range schedule.ConflictingReservations(interval) {
		if r.ID == excludeID {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids
}

package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"gardencore/internal/infra/persistence/memory"
	"gardencore/pkg/domain"
)

// The built-in rules are the commit-time backstop behind the service's eager
// checks. These tests drive the store directly, bypassing the service, to
// prove the invariants hold even for callers that skip the typed pre-checks.

func newBackstopStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine(),
		memory.WithNowFunc(func() time.Time { return day(2026, time.March, 1) }))
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreatePlot(Plot{Base: Base{ID: "P1"}}); err != nil {
			return err
		}
		_, err := tx.CreateGardener(Gardener{Base: Base{ID: "G1"}})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func createPending(t *testing.T, store *memory.Store, iv Interval) string {
	t.Helper()
	var id string
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		r, err := tx.CreateReservation(Reservation{PlotID: "P1", GardenerID: "G1", Interval: iv})
		id = r.ID
		return err
	}); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	return id
}

func TestStatusTransitionRuleBlocksIllegalMoves(t *testing.T) {
	store := newBackstopStore(t)
	ctx := context.Background()
	iv := mustInterval(t, day(2026, time.April, 1), day(2026, time.April, 10))
	id := createPending(t, store, iv)

	// Pending cannot jump straight to completed.
	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateReservation(id, func(r *Reservation) error {
			r.Status = StatusCompleted
			return nil
		})
		return err
	})
	var rve RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatal("expected blocking violation")
	}
	if got, _ := store.GetReservation(id); got.Status != StatusPending {
		t.Fatalf("blocked transition mutated status to %s", got.Status)
	}

	// Unknown status values always block.
	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateReservation(id, func(r *Reservation) error {
			r.Status = ReservationStatus("limbo")
			return nil
		})
		return err
	})
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation for unknown status, got %v", err)
	}
}

func TestReservationConflictRuleBlocksDoubleConfirm(t *testing.T) {
	store := newBackstopStore(t)
	ctx := context.Background()
	iv := mustInterval(t, day(2026, time.April, 1), day(2026, time.April, 30))
	first := createPending(t, store, iv)
	second := createPending(t, store, iv)

	confirm := func(id string) error {
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.UpdateReservation(id, func(r *Reservation) error {
				r.Status = StatusConfirmed
				return nil
			})
			return err
		})
		return err
	}

	if err := confirm(first); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	var rve RuleViolationError
	if err := confirm(second); !errors.As(err, &rve) {
		t.Fatalf("expected conflict violation on second confirm, got %v", err)
	}
	if got, _ := store.GetReservation(second); got.Status != StatusPending {
		t.Fatalf("blocked confirm mutated status to %s", got.Status)
	}
}

func TestGardenerQuotaRuleBlocksOverflow(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(NewGardenerQuotaRule(2))
	store := memory.NewStore(engine,
		memory.WithNowFunc(func() time.Time { return day(2026, time.March, 1) }))
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.CreatePlot(Plot{Base: Base{ID: "P1"}}); err != nil {
			return err
		}
		_, err := tx.CreateGardener(Gardener{Base: Base{ID: "G1"}})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	create := func(month time.Month) error {
		iv := mustInterval(t, day(2026, month, 1), day(2026, month, 10))
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.CreateReservation(Reservation{PlotID: "P1", GardenerID: "G1", Interval: iv})
			return err
		})
		return err
	}

	if err := create(time.April); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := create(time.May); err != nil {
		t.Fatalf("second: %v", err)
	}
	var rve RuleViolationError
	if err := create(time.June); !errors.As(err, &rve) {
		t.Fatalf("expected quota violation on third, got %v", err)
	}
	if got := store.ListReservations(); len(got) != 2 {
		t.Fatalf("blocked creation leaked state: %d reservations", len(got))
	}
}

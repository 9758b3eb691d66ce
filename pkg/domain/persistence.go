package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreatePlot(Plot) (Plot, error)
	UpdatePlot(id string, mutator func(*Plot) error) (Plot, error)
	DeletePlot(id string) error
	CreateGardener(Gardener) (Gardener, error)
	UpdateGardener(id string, mutator func(*Gardener) error) (Gardener, error)
	DeleteGardener(id string) error
	CreateReservation(Reservation) (Reservation, error)
	UpdateReservation(id string, mutator func(*Reservation) error) (Reservation, error)
	FindPlot(id string) (Plot, bool)
	FindGardener(id string) (Gardener, bool)
	FindReservation(id string) (Reservation, bool)
	PlotSchedule(plotID string) (PlotSchedule, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over booking state backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetPlot(id string) (Plot, bool)
	ListPlots() []Plot
	GetGardener(id string) (Gardener, bool)
	ListGardeners() []Gardener
	GetReservation(id string) (Reservation, bool)
	ListReservations() []Reservation
}

// Package memory provides the in-memory implementation of the booking
// persistence store. Transactions run on a deep clone of state, capture
// change records, and commit only when the rules engine raises no blocking
// violation, so multi-entity registrations are all-or-nothing.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gardencore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plot aliases domain.Plot for in-memory persistence operations.
	Plot = domain.Plot
	// Gardener aliases domain.Gardener.
	Gardener = domain.Gardener
	// Reservation aliases domain.Reservation.
	Reservation = domain.Reservation
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	plots        map[string]Plot
	gardeners    map[string]Gardener
	reservations map[string]Reservation
	// seq is the monotonic reservation counter. It is part of cloned state so
	// an aborted transaction never burns an identifier.
	seq int
}

func newMemoryState() memoryState {
	return memoryState{
		plots:        make(map[string]Plot),
		gardeners:    make(map[string]Gardener),
		reservations: make(map[string]Reservation),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	cloned.seq = s.seq
	for k, v := range s.plots {
		cloned.plots[k] = clonePlot(v)
	}
	for k, v := range s.gardeners {
		cloned.gardeners[k] = cloneGardener(v)
	}
	for k, v := range s.reservations {
		cloned.reservations[k] = cloneReservation(v)
	}
	return cloned
}

func clonePlot(p Plot) Plot {
	cp := p
	cp.AllowedCrops = append([]string(nil), p.AllowedCrops...)
	cp.ReservationIDs = append([]string(nil), p.ReservationIDs...)
	return cp
}

func cloneGardener(g Gardener) Gardener {
	cp := g
	cp.ReservationIDs = append([]string(nil), g.ReservationIDs...)
	return cp
}

func cloneReservation(r Reservation) Reservation {
	cp := r
	cp.PlantingPlan = append([]domain.Crop(nil), r.PlantingPlan...)
	return cp
}

func plotReservationIDs(state *memoryState, plotID string) []string {
	var ids []string
	for _, r := range state.reservations {
		if r.PlotID == plotID {
			ids = append(ids, r.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func gardenerReservationIDs(state *memoryState, gardenerID string) []string {
	var ids []string
	for _, r := range state.reservations {
		if r.GardenerID == gardenerID {
			ids = append(ids, r.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func decoratePlot(state *memoryState, plot Plot) Plot {
	plot.ReservationIDs = plotReservationIDs(state, plot.ID)
	return plot
}

func decorateGardener(state *memoryState, gardener Gardener) Gardener {
	gardener.ReservationIDs = gardenerReservationIDs(state, gardener.ID)
	return gardener
}

func plotSchedule(state *memoryState, plotID string) (domain.PlotSchedule, bool) {
	plot, ok := state.plots[plotID]
	if !ok {
		return domain.PlotSchedule{}, false
	}
	schedule := domain.PlotSchedule{Plot: clonePlot(decoratePlot(state, plot))}
	for _, id := range schedule.Plot.ReservationIDs {
		schedule.Reservations = append(schedule.Reservations, cloneReservation(state.reservations[id]))
	}
	return schedule, true
}

// Store provides an in-memory transactional store for the booking domain.
type Store struct {
	mu       sync.RWMutex
	state    memoryState
	engine   *RulesEngine
	nowFn    func() time.Time
	idPrefix string
}

// Option configures optional store behavior.
type Option func(*Store)

// WithNowFunc overrides the store clock. The clock decides creation and
// update timestamps and is handed to availability queries as "today".
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithReservationIDPrefix overrides the prefix used for allocated
// reservation identifiers (default "R").
func WithReservationIDPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.idPrefix = prefix
		}
	}
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:    newMemoryState(),
		engine:   engine,
		nowFn:    func() time.Time { return time.Now().UTC() },
		idPrefix: "R",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// newEntityID backfills a caller-omitted plot or gardener identifier.
func newEntityID() string {
	return uuid.NewString()
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListPlots returns all plots within the transaction snapshot, ordered by ID.
func (v transactionView) ListPlots() []Plot {
	out := make([]Plot, 0, len(v.state.plots))
	for _, p := range v.state.plots {
		out = append(out, clonePlot(decoratePlot(v.state, p)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListGardeners returns all gardeners in the snapshot, ordered by ID.
func (v transactionView) ListGardeners() []Gardener {
	out := make([]Gardener, 0, len(v.state.gardeners))
	for _, g := range v.state.gardeners {
		out = append(out, cloneGardener(decorateGardener(v.state, g)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListReservations returns all reservations in the snapshot, ordered by ID.
// Reservation IDs are monotonic, so this is also creation order.
func (v transactionView) ListReservations() []Reservation {
	out := make([]Reservation, 0, len(v.state.reservations))
	for _, r := range v.state.reservations {
		out = append(out, cloneReservation(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindPlot retrieves a plot by ID from the snapshot.
func (v transactionView) FindPlot(id string) (Plot, bool) {
	p, ok := v.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(decoratePlot(v.state, p)), true
}

// FindGardener retrieves a gardener by ID from the snapshot.
func (v transactionView) FindGardener(id string) (Gardener, bool) {
	g, ok := v.state.gardeners[id]
	if !ok {
		return Gardener{}, false
	}
	return cloneGardener(decorateGardener(v.state, g)), true
}

// FindReservation retrieves a reservation by ID from the snapshot.
func (v transactionView) FindReservation(id string) (Reservation, bool) {
	r, ok := v.state.reservations[id]
	if !ok {
		return Reservation{}, false
	}
	return cloneReservation(r), true
}

// PlotSchedule assembles the availability view for one plot.
func (v transactionView) PlotSchedule(plotID string) (domain.PlotSchedule, bool) {
	return plotSchedule(v.state, plotID)
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// helper to record and append change entries.
func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindPlot exposes plot lookup within the transaction scope.
func (tx *transaction) FindPlot(id string) (Plot, bool) {
	p, ok := tx.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(decoratePlot(&tx.state, p)), true
}

// FindGardener exposes gardener lookup within the transaction scope.
func (tx *transaction) FindGardener(id string) (Gardener, bool) {
	g, ok := tx.state.gardeners[id]
	if !ok {
		return Gardener{}, false
	}
	return cloneGardener(decorateGardener(&tx.state, g)), true
}

// FindReservation exposes reservation lookup within the transaction scope.
func (tx *transaction) FindReservation(id string) (Reservation, bool) {
	r, ok := tx.state.reservations[id]
	if !ok {
		return Reservation{}, false
	}
	return cloneReservation(r), true
}

// PlotSchedule assembles the availability view for one plot within the transaction.
func (tx *transaction) PlotSchedule(plotID string) (domain.PlotSchedule, bool) {
	return plotSchedule(&tx.state, plotID)
}

// CreatePlot stores a new plot within the transaction. The ID is trimmed and
// backfilled when blank; duplicate IDs are rejected. Size is clamped to zero.
func (tx *transaction) CreatePlot(p Plot) (Plot, error) {
	p.ID = domain.TrimID(p.ID)
	if p.ID == "" {
		p.ID = newEntityID()
	}
	if _, exists := tx.state.plots[p.ID]; exists {
		return Plot{}, fmt.Errorf("plot %q already exists", p.ID)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.SizeSqMeters < 0 {
		p.SizeSqMeters = 0
	}
	p.AllowedCrops = domain.NormalizeCropNames(p.AllowedCrops)
	p.ReservationIDs = nil
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plots[p.ID] = clonePlot(p)
	created := decoratePlot(&tx.state, p)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionCreate, After: clonePlot(created)})
	return clonePlot(created), nil
}

// UpdatePlot mutates a plot using the provided mutator function.
func (tx *transaction) UpdatePlot(id string, mutator func(*Plot) error) (Plot, error) {
	current, ok := tx.state.plots[id]
	if !ok {
		return Plot{}, fmt.Errorf("plot %q not found", id)
	}
	before := clonePlot(decoratePlot(&tx.state, current))
	if err := mutator(&current); err != nil {
		return Plot{}, err
	}
	if current.SizeSqMeters < 0 {
		current.SizeSqMeters = 0
	}
	current.AllowedCrops = domain.NormalizeCropNames(current.AllowedCrops)
	current.ReservationIDs = nil
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plots[id] = clonePlot(current)
	after := decoratePlot(&tx.state, current)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionUpdate, Before: before, After: clonePlot(after)})
	return clonePlot(after), nil
}

// DeletePlot removes a plot. Removal is blocked while any reservation on the
// plot is still pending or confirmed; terminal reservations are history and do
// not pin the plot.
func (tx *transaction) DeletePlot(id string) error {
	current, ok := tx.state.plots[id]
	if !ok {
		return fmt.Errorf("plot %q not found", id)
	}
	for _, r := range tx.state.reservations {
		if r.PlotID == id && r.IsActive() {
			return fmt.Errorf("plot %q still referenced by active reservation %q", id, r.ID)
		}
	}
	decorated := decoratePlot(&tx.state, current)
	delete(tx.state.plots, id)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionDelete, Before: clonePlot(decorated)})
	return nil
}

// CreateGardener stores a new gardener within the transaction.
func (tx *transaction) CreateGardener(g Gardener) (Gardener, error) {
	g.ID = domain.TrimID(g.ID)
	if g.ID == "" {
		g.ID = newEntityID()
	}
	if _, exists := tx.state.gardeners[g.ID]; exists {
		return Gardener{}, fmt.Errorf("gardener %q already exists", g.ID)
	}
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		g.Name = "Unknown"
	}
	g.ReservationIDs = nil
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.gardeners[g.ID] = cloneGardener(g)
	created := decorateGardener(&tx.state, g)
	tx.recordChange(Change{Entity: domain.EntityGardener, Action: domain.ActionCreate, After: cloneGardener(created)})
	return cloneGardener(created), nil
}

// UpdateGardener mutates a gardener using the provided mutator function.
func (tx *transaction) UpdateGardener(id string, mutator func(*Gardener) error) (Gardener, error) {
	current, ok := tx.state.gardeners[id]
	if !ok {
		return Gardener{}, fmt.Errorf("gardener %q not found", id)
	}
	before := cloneGardener(decorateGardener(&tx.state, current))
	if err := mutator(&current); err != nil {
		return Gardener{}, err
	}
	current.ReservationIDs = nil
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.gardeners[id] = cloneGardener(current)
	after := decorateGardener(&tx.state, current)
	tx.recordChange(Change{Entity: domain.EntityGardener, Action: domain.ActionUpdate, Before: before, After: cloneGardener(after)})
	return cloneGardener(after), nil
}

// DeleteGardener removes a gardener, blocked while they hold any active
// reservation.
func (tx *transaction) DeleteGardener(id string) error {
	current, ok := tx.state.gardeners[id]
	if !ok {
		return fmt.Errorf("gardener %q not found", id)
	}
	for _, r := range tx.state.reservations {
		if r.GardenerID == id && r.IsActive() {
			return fmt.Errorf("gardener %q still referenced by active reservation %q", id, r.ID)
		}
	}
	decorated := decorateGardener(&tx.state, current)
	delete(tx.state.gardeners, id)
	tx.recordChange(Change{Entity: domain.EntityGardener, Action: domain.ActionDelete, Before: cloneGardener(decorated)})
	return nil
}

// CreateReservation stores a new reservation. The identifier is allocated
// from the store's monotonic counter; callers never choose reservation IDs.
// Plot, gardener and a valid interval are all required, and both referenced
// entities must exist. The reservation always starts pending.
func (tx *transaction) CreateReservation(r Reservation) (Reservation, error) {
	if r.ID != "" {
		return Reservation{}, errors.New("reservation IDs are allocated by the store")
	}
	r.PlotID = domain.TrimID(r.PlotID)
	r.GardenerID = domain.TrimID(r.GardenerID)
	if r.PlotID == "" {
		return Reservation{}, errors.New("reservation requires plot id")
	}
	if r.GardenerID == "" {
		return Reservation{}, errors.New("reservation requires gardener id")
	}
	if r.Interval.IsZero() {
		return Reservation{}, errors.New("reservation requires a date range")
	}
	if _, ok := tx.state.plots[r.PlotID]; !ok {
		return Reservation{}, fmt.Errorf("plot %q not found", r.PlotID)
	}
	if _, ok := tx.state.gardeners[r.GardenerID]; !ok {
		return Reservation{}, fmt.Errorf("gardener %q not found", r.GardenerID)
	}
	tx.state.seq++
	r.ID = fmt.Sprintf("%s%04d", tx.store.idPrefix, tx.state.seq)
	r.Status = domain.StatusPending
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.reservations[r.ID] = cloneReservation(r)
	tx.recordChange(Change{Entity: domain.EntityReservation, Action: domain.ActionCreate, After: cloneReservation(r)})
	return cloneReservation(r), nil
}

// UpdateReservation mutates a reservation using the provided mutator. The
// binding fields (plot, gardener, interval) are immutable after creation and
// are restored if a mutator touches them. There is no DeleteReservation:
// terminal reservations persist as history.
func (tx *transaction) UpdateReservation(id string, mutator func(*Reservation) error) (Reservation, error) {
	current, ok := tx.state.reservations[id]
	if !ok {
		return Reservation{}, fmt.Errorf("reservation %q not found", id)
	}
	before := cloneReservation(current)
	if err := mutator(&current); err != nil {
		return Reservation{}, err
	}
	current.ID = id
	current.PlotID = before.PlotID
	current.GardenerID = before.GardenerID
	current.Interval = before.Interval
	current.UpdatedAt = tx.now
	tx.state.reservations[id] = cloneReservation(current)
	tx.recordChange(Change{Entity: domain.EntityReservation, Action: domain.ActionUpdate, Before: before, After: cloneReservation(current)})
	return cloneReservation(current), nil
}

// Read helpers ---------------------------------------------------------------

// GetPlot retrieves a plot by ID from committed state.
func (s *Store) GetPlot(id string) (Plot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plots[id]
	if !ok {
		return Plot{}, false
	}
	return clonePlot(decoratePlot(&s.state, p)), true
}

// ListPlots returns all plots from committed state, ordered by ID.
func (s *Store) ListPlots() []Plot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Plot, 0, len(s.state.plots))
	for _, p := range s.state.plots {
		out = append(out, clonePlot(decoratePlot(&s.state, p)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetGardener retrieves a gardener by ID from committed state.
func (s *Store) GetGardener(id string) (Gardener, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.gardeners[id]
	if !ok {
		return Gardener{}, false
	}
	return cloneGardener(decorateGardener(&s.state, g)), true
}

// ListGardeners returns all gardeners from committed state, ordered by ID.
func (s *Store) ListGardeners() []Gardener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Gardener, 0, len(s.state.gardeners))
	for _, g := range s.state.gardeners {
		out = append(out, cloneGardener(decorateGardener(&s.state, g)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetReservation retrieves a reservation by ID from committed state.
func (s *Store) GetReservation(id string) (Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.reservations[id]
	if !ok {
		return Reservation{}, false
	}
	return cloneReservation(r), true
}

// ListReservations returns all reservations from committed state in creation
// order (IDs are monotonic).
func (s *Store) ListReservations() []Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reservation, 0, len(s.state.reservations))
	for _, r := range s.state.reservations {
		out = append(out, cloneReservation(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package core

import "gardencore/pkg/domain"

// DefaultGardenerQuota is the maximum number of active reservations a single
// gardener may hold unless configured otherwise.
const DefaultGardenerQuota = 3

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewStatusTransitionRule())
	engine.Register(NewReservationConflictRule())
	engine.Register(NewGardenerQuotaRule(DefaultGardenerQuota))
	return engine
}

func reservationFromPayload(payload any) (Reservation, bool) {
	r, ok := payload.(Reservation)
	return r, ok
}

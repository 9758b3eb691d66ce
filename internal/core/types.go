package core

import "gardencore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ReservationStatus  = domain.ReservationStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Plot               = domain.Plot
	Gardener           = domain.Gardener
	Reservation        = domain.Reservation
	Crop               = domain.Crop
	Season             = domain.Season
	Interval           = domain.Interval
	PlotSchedule       = domain.PlotSchedule
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleView           = domain.RuleView
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	RuleViolationError = domain.RuleViolationError
	TransitionError    = domain.TransitionError
)

const (
	EntityPlot        = domain.EntityPlot
	EntityGardener    = domain.EntityGardener
	EntityReservation = domain.EntityReservation
)

const (
	StatusPending   = domain.StatusPending
	StatusConfirmed = domain.StatusConfirmed
	StatusCancelled = domain.StatusCancelled
	StatusCompleted = domain.StatusCompleted
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

package ingest

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/normalize"
)

// ValidationError marks malformed or out-of-range input caught before any
// database write. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ErrNoWinner is returned when no extraction strategy can resolve a winner.
var ErrNoWinner = errors.New("no winner determinable")

// ErrBatchFatal wraps failures outside the per-race loop (e.g. no database
// connection at all); it aborts the whole batch.
var ErrBatchFatal = errors.New("fatal batch error")

var validate = validator.New()

// ValidateRequest schema-checks the inbound batch shape before any DB work.
// Per-race semantics (race number range, entry signal content) are checked
// race by race inside the orchestrator so one bad race cannot reject a batch.
func ValidateRequest(req *DailyRaceRequest) error {
	if err := validate.Struct(req); err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid request: %v", err)}
	}
	return nil
}

// signal fields that make an entry worth storing.
func (e EntryData) hasSignal() bool {
	for _, v := range []Flex{
		e.Double, e.Constant, e.P3, e.CorrectP3, e.ML, e.LiveOdds, e.SharpPct,
		e.Action, e.DoubleDelta, e.P3Delta, e.XFigure, e.WillPay2, e.WillPay,
		e.WillPay1P3, e.WinPool, e.VetoRating,
	} {
		if v.String() != "" {
			return true
		}
	}
	return false
}

// ValidEntry reports whether an entry should be stored: the horse number must
// be in range and at least one wagering signal must be present.
func ValidEntry(e EntryData) bool {
	if normalize.HorseNumber(e.HorseNumber.String()) == nil {
		return false
	}
	return e.hasSignal()
}

// NormalizeEntry converts a raw entry into its stored form. Call only after
// ValidEntry has accepted it.
func NormalizeEntry(raceID string, e EntryData) *models.RaceEntry {
	horse := normalize.HorseNumber(e.HorseNumber.String())
	return &models.RaceEntry{
		RaceID:       raceID,
		HorseNumber:  *horse,
		Double:       normalize.Numeric(e.Double.String()),
		Constant:     normalize.Numeric(e.Constant.String()),
		P3:           normalize.Numeric(e.P3.String()),
		CorrectP3:    normalize.Numeric(e.CorrectP3.String()),
		ML:           normalize.CleanString(e.ML.String()),
		LiveOdds:     normalize.Numeric(e.LiveOdds.String()),
		SharpPercent: normalize.Percentage(e.SharpPct.String()),
		Action:       normalize.Numeric(e.Action.String()),
		DoubleDelta:  normalize.Numeric(e.DoubleDelta.String()),
		P3Delta:      normalize.Numeric(e.P3Delta.String()),
		XFigure:      normalize.Numeric(e.XFigure.String()),
		WillPay2:     normalize.Currency(e.WillPay2.String()),
		WillPay:      normalize.Currency(e.WillPay.String()),
		WillPay1P3:   normalize.Currency(e.WillPay1P3.String()),
		WinPool:      normalize.Numeric(e.WinPool.String()),
		VetoRating:   normalize.Numeric(e.VetoRating.String()),
		RawData:      normalize.CleanString(e.RawData.String()),
	}
}

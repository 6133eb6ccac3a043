package ingest

import (
	"fmt"

	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/normalize"
)

// winnerKey builds the race_winners map key used by the upstream exports,
// e.g. "AQUEDUCT 04-27-25 Race 3". The date is the request's raw date string.
func winnerKey(trackName, rawDate string, raceNumber int) string {
	return fmt.Sprintf("%s %s Race %d", trackName, rawDate, raceNumber)
}

// ExtractWinner resolves the winning horse for a race in strict priority
// order:
//
//  1. header: the authoritative payload names a horse that exists among the
//     entries and its payouts are non-negative — accepted verbatim, high
//     confidence (or the payload's own method/confidence when valid).
//  2. summary: highest parsed $2 will-pay among the entries. A proxy for
//     real result data, medium confidence.
//  3. cross_reference: the same payout maximization run permissively over
//     the $2 will-pay, $1 will-pay and win pool. Low confidence. A
//     position-based heuristic was planned here but never implemented, so
//     strategies 2 and 3 differ only in permissiveness.
//
// ErrNoWinner when no strategy resolves anything.
func ExtractWinner(entries []*models.RaceEntry, payload *WinnerPayload) (*models.RaceWinner, error) {
	if len(entries) == 0 {
		return nil, ErrNoWinner
	}
	raceID := entries[0].RaceID

	if w := headerWinner(raceID, entries, payload); w != nil {
		return w, nil
	}
	if w := payoutWinner(raceID, entries, false); w != nil {
		return w, nil
	}
	if w := payoutWinner(raceID, entries, true); w != nil {
		return w, nil
	}
	return nil, ErrNoWinner
}

func headerWinner(raceID string, entries []*models.RaceEntry, payload *WinnerPayload) *models.RaceWinner {
	if payload == nil {
		return nil
	}

	horse := normalize.HorseNumber(payload.WinningHorseNumber.String())
	if horse == nil {
		return nil
	}

	found := false
	for _, e := range entries {
		if e.HorseNumber == *horse {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	payout2 := normalize.Numeric(payload.WinningPayout2Dollar.String())
	payoutP3 := normalize.Numeric(payload.WinningPayout1P3.String())
	if (payout2 != nil && *payout2 < 0) || (payoutP3 != nil && *payoutP3 < 0) {
		return nil
	}

	method := models.MethodHeader
	if validMethod(payload.ExtractionMethod) {
		method = payload.ExtractionMethod
	}
	confidence := models.ConfidenceHigh
	if validConfidence(payload.ExtractionConfidence) {
		confidence = payload.ExtractionConfidence
	}

	return &models.RaceWinner{
		RaceID:               raceID,
		WinningHorseNumber:   *horse,
		WinningPayout2Dollar: payout2,
		WinningPayout1P3:     payoutP3,
		ExtractionMethod:     method,
		ExtractionConfidence: confidence,
	}
}

// payoutWinner picks the entry with the highest $2 will-pay. The permissive
// pass also falls back to the $1 will-pay and the win pool when the $2 value
// is absent, and is labelled cross_reference/low.
func payoutWinner(raceID string, entries []*models.RaceEntry, permissive bool) *models.RaceWinner {
	var best *models.RaceEntry
	var bestPayout float64

	for _, e := range entries {
		payout := entryPayout(e, permissive)
		if payout == nil {
			continue
		}
		if best == nil || *payout > bestPayout {
			best = e
			bestPayout = *payout
		}
	}
	if best == nil {
		return nil
	}

	method, confidence := models.MethodSummary, models.ConfidenceMedium
	if permissive {
		method, confidence = models.MethodCrossReference, models.ConfidenceLow
	}

	winner := &models.RaceWinner{
		RaceID:               raceID,
		WinningHorseNumber:   best.HorseNumber,
		ExtractionMethod:     method,
		ExtractionConfidence: confidence,
	}
	if p2 := numericOrNil(best.WillPay2); p2 != nil && *p2 >= 0 {
		winner.WinningPayout2Dollar = p2
	}
	if p3 := numericOrNil(best.WillPay1P3); p3 != nil && *p3 >= 0 {
		winner.WinningPayout1P3 = p3
	}
	return winner
}

func entryPayout(e *models.RaceEntry, permissive bool) *float64 {
	if p := numericOrNil(e.WillPay2); p != nil {
		return p
	}
	if !permissive {
		return nil
	}
	if p := numericOrNil(e.WillPay); p != nil {
		return p
	}
	return e.WinPool
}

func numericOrNil(s *string) *float64 {
	if s == nil {
		return nil
	}
	return normalize.Numeric(*s)
}

// ValidateWinner re-checks a candidate independently of which strategy
// produced it: horse number range, enum membership and payout non-negativity.
func ValidateWinner(w *models.RaceWinner) error {
	if w.WinningHorseNumber < normalize.HorseNumberMin || w.WinningHorseNumber > normalize.HorseNumberMax {
		return &ValidationError{Msg: fmt.Sprintf("winning horse number %d out of range", w.WinningHorseNumber)}
	}
	if !validMethod(w.ExtractionMethod) {
		return &ValidationError{Msg: fmt.Sprintf("unknown extraction method %q", w.ExtractionMethod)}
	}
	if !validConfidence(w.ExtractionConfidence) {
		return &ValidationError{Msg: fmt.Sprintf("unknown extraction confidence %q", w.ExtractionConfidence)}
	}
	if w.WinningPayout2Dollar != nil && *w.WinningPayout2Dollar < 0 {
		return &ValidationError{Msg: "negative $2 payout"}
	}
	if w.WinningPayout1P3 != nil && *w.WinningPayout1P3 < 0 {
		return &ValidationError{Msg: "negative $1 pick-3 payout"}
	}
	return nil
}

func validMethod(m string) bool {
	switch m {
	case models.MethodSimpleCorrect, models.MethodHeader, models.MethodSummary, models.MethodCrossReference:
		return true
	}
	return false
}

func validConfidence(c string) bool {
	switch c {
	case models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow:
		return true
	}
	return false
}

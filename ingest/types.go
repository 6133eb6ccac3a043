// Package ingest implements the daily race-data pipeline: request validation,
// entry normalization, winner extraction and the per-race transactional
// orchestrator.
package ingest

import (
	"encoding/json"
	"strings"
)

// Flex captures a JSON scalar that may arrive as a number, string, bool or
// null. Spreadsheet exports are loose about types ("3" vs 3, "FALSE" in a
// numeric column), so every wagering field crosses the boundary as text and
// is normalized immediately. Flex never travels past the normalization layer.
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Flex(s)
		return nil
	}
	// Numbers and bools: keep the raw token as text.
	*f = Flex(strings.TrimSpace(string(b)))
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f Flex) String() string { return string(f) }

// EntryData is one horse's raw wagering row as received.
type EntryData struct {
	HorseNumber Flex `json:"horse_number"`
	Double      Flex `json:"double"`
	Constant    Flex `json:"constant"`
	P3          Flex `json:"p3"`
	CorrectP3   Flex `json:"correct_p3"`
	ML          Flex `json:"ml"`
	LiveOdds    Flex `json:"live_odds"`
	SharpPct    Flex `json:"sharp_percent"`
	Action      Flex `json:"action"`
	DoubleDelta Flex `json:"double_delta"`
	P3Delta     Flex `json:"p3_delta"`
	XFigure     Flex `json:"x_figure"`
	WillPay2    Flex `json:"will_pay_2"`
	WillPay     Flex `json:"will_pay"`
	WillPay1P3  Flex `json:"will_pay_1_p3"`
	WinPool     Flex `json:"win_pool"`
	VetoRating  Flex `json:"veto_rating"`
	RawData     Flex `json:"raw_data"`
}

// RaceData is one race in a daily batch.
type RaceData struct {
	RaceID     string      `json:"race_id"`
	Track      string      `json:"track" validate:"required"`
	Date       string      `json:"date" validate:"required"`
	RaceNumber Flex        `json:"race_number" validate:"required"`
	PostTime   string      `json:"post_time"`
	Entries    []EntryData `json:"entries" validate:"required,min=1"`
}

// WinnerPayload is the authoritative winner data keyed by
// "<TRACK NAME> <MM-DD-YY> Race <N>" in the request.
type WinnerPayload struct {
	WinningHorseNumber   Flex   `json:"winning_horse_number"`
	WinningPayout2Dollar Flex   `json:"winning_payout_2_dollar"`
	WinningPayout1P3     Flex   `json:"winning_payout_1_p3"`
	ExtractionMethod     string `json:"extraction_method"`
	ExtractionConfidence string `json:"extraction_confidence"`
}

// DailyRaceRequest is the full ingestion batch.
type DailyRaceRequest struct {
	Source      string                   `json:"source" validate:"required"`
	Races       []RaceData               `json:"races" validate:"required,min=1,dive"`
	RaceWinners map[string]WinnerPayload `json:"race_winners"`
}

// Statistics are precise counts over one batch: processed means committed,
// skipped means rolled back.
type Statistics struct {
	RacesProcessed   int      `json:"races_processed"`
	EntriesProcessed int      `json:"entries_processed"`
	RacesSkipped     int      `json:"races_skipped"`
	EntriesSkipped   int      `json:"entries_skipped"`
	Errors           []string `json:"errors"`
}

// Result is the outcome of a whole batch.
type Result struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	Statistics     Statistics `json:"statistics"`
	ProcessedRaces []string   `json:"processed_races"`
}

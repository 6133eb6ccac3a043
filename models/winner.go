package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Extraction methods, in descending order of authority.
const (
	MethodSimpleCorrect  = "simple_correct"
	MethodHeader         = "header"
	MethodSummary        = "summary"
	MethodCrossReference = "cross_reference"
)

// Extraction confidence labels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// RaceWinner records the resolved winning horse for a race, 1:1 with races.
// Method and confidence say how the value was derived, for auditability.
type RaceWinner struct {
	bun.BaseModel `bun:"table:race_winners,alias:rw"`

	ID                   int       `bun:"id,pk,autoincrement" json:"id"`
	RaceID               string    `bun:"race_id,notnull,unique" json:"raceID"`
	WinningHorseNumber   int       `bun:"winning_horse_number,notnull" json:"winningHorseNumber"`
	WinningPayout2Dollar *float64  `bun:"winning_payout_2_dollar" json:"winningPayout2Dollar,omitempty"`
	WinningPayout1P3     *float64  `bun:"winning_payout_1_p3" json:"winningPayout1P3,omitempty"`
	ExtractionMethod     string    `bun:"extraction_method,notnull" json:"extractionMethod"`
	ExtractionConfidence string    `bun:"extraction_confidence,notnull" json:"extractionConfidence"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt            time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Race *Race `bun:"rel:belongs-to,join:race_id=race_id" json:"-"`
}

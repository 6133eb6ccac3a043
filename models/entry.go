package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RaceEntry is one horse's wagering signals within a race, keyed by
// (race_id, horse_number). Numeric fields are normalized floats; currency and
// percentage fields keep their display form since reports show them verbatim.
type RaceEntry struct {
	bun.BaseModel `bun:"table:race_entries,alias:re"`

	ID          int    `bun:"id,pk,autoincrement" json:"id"`
	RaceID      string `bun:"race_id,notnull,unique:race_entries_no_dupes" json:"raceID"`
	HorseNumber int    `bun:"horse_number,notnull,unique:race_entries_no_dupes" json:"horseNumber"`

	Double       *float64 `bun:"double_val" json:"double,omitempty"`
	Constant     *float64 `bun:"constant" json:"constant,omitempty"`
	P3           *float64 `bun:"p3" json:"p3,omitempty"`
	CorrectP3    *float64 `bun:"correct_p3" json:"correctP3,omitempty"`
	ML           *string  `bun:"ml" json:"ml,omitempty"`
	LiveOdds     *float64 `bun:"live_odds" json:"liveOdds,omitempty"`
	SharpPercent *string  `bun:"sharp_percent" json:"sharpPercent,omitempty"`
	Action       *float64 `bun:"action" json:"action,omitempty"`
	DoubleDelta  *float64 `bun:"double_delta" json:"doubleDelta,omitempty"`
	P3Delta      *float64 `bun:"p3_delta" json:"p3Delta,omitempty"`
	XFigure      *float64 `bun:"x_figure" json:"xFigure,omitempty"`
	WillPay2     *string  `bun:"will_pay_2" json:"willPay2,omitempty"`
	WillPay      *string  `bun:"will_pay" json:"willPay,omitempty"`
	WillPay1P3   *string  `bun:"will_pay_1_p3" json:"willPay1P3,omitempty"`
	WinPool      *float64 `bun:"win_pool" json:"winPool,omitempty"`
	VetoRating   *float64 `bun:"veto_rating" json:"vetoRating,omitempty"`
	RawData      *string  `bun:"raw_data" json:"rawData,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Race *Race `bun:"rel:belongs-to,join:race_id=race_id" json:"-"`
}

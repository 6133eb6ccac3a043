package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Race is one scheduled event at a track on a date. The id is derived from
// (track code, date, race number) as TRACKCODE_YYYYMMDD_NN, so re-ingesting
// the same race always hits the same row.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	RaceID     string    `bun:"race_id,pk" json:"raceID"`
	TrackID    int       `bun:"track_id,notnull" json:"trackID"`
	Date       string    `bun:"date,notnull,type:date" json:"date"`
	RaceNumber int       `bun:"race_number,notnull" json:"raceNumber"`
	PostTime   *string   `bun:"post_time" json:"postTime,omitempty"`
	SourceFile string    `bun:"source_file,notnull" json:"sourceFile"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Track *Track `bun:"rel:belongs-to,join:track_id=track_id" json:"-"`
}

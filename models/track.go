package models

import "github.com/uptrace/bun"

// Track represents a racing venue. Identity is the short code (e.g. "AQU");
// the name is the canonical full name from the static lookup table.
type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:t"`

	TrackID  int     `bun:"track_id,pk,autoincrement" json:"trackID"`
	Code     string  `bun:"code,notnull,unique" json:"code"`
	Name     string  `bun:"name,notnull" json:"name"`
	Location *string `bun:"location" json:"location,omitempty"`
}

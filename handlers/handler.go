package handlers

import (
	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/ingest"
	"github.com/padraicbc/trackapi/xpressbet"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db       *bun.DB
	ingestor *ingest.Ingestor
	wagers   *xpressbet.Client
	JWTKey   []byte
}

// New creates a Handler. The wager client may be nil when no gateway is
// configured; the wager route then reports the feature unavailable.
func New(db *bun.DB, ingestor *ingest.Ingestor, wagers *xpressbet.Client, jwtKey []byte) *Handler {
	return &Handler{db: db, ingestor: ingestor, wagers: wagers, JWTKey: jwtKey}
}

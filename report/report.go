// Package report builds the plain-text daily ingestion summary and emails it.
package report

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/store"
)

const summaryTmpl = `Daily race data summary for {{.Date}}

Races ingested:   {{.RaceCount}}
Entries ingested: {{.EntryCount}}
Winners resolved: {{len .Winners}}

{{- if .Winners}}

Winners:
{{- range .Winners}}
  {{.RaceID}}: horse {{.WinningHorseNumber}} ({{.ExtractionMethod}}/{{.ExtractionConfidence}}){{if .WinningPayout2Dollar}} ${{printf "%.2f" (deref .WinningPayout2Dollar)}}{{end}}
{{- end}}
{{- end}}
`

var tmpl = template.Must(template.New("summary").
	Funcs(template.FuncMap{"deref": func(f *float64) float64 { return *f }}).
	Parse(summaryTmpl))

// Summary holds one day's ingestion totals.
type Summary struct {
	Date       string
	RaceCount  int
	EntryCount int
	Winners    []winnerLine
}

type winnerLine struct {
	RaceID               string
	WinningHorseNumber   int
	ExtractionMethod     string
	ExtractionConfidence string
	WinningPayout2Dollar *float64
}

// BuildDailySummary renders the report text for one calendar date.
func BuildDailySummary(ctx context.Context, db bun.IDB, date string) (string, error) {
	races, err := store.RacesByDateRange(ctx, db, date, date)
	if err != nil {
		return "", err
	}
	entries, err := store.EntriesByDate(ctx, db, date)
	if err != nil {
		return "", err
	}
	winners, err := store.WinnersByDateRange(ctx, db, date, date)
	if err != nil {
		return "", err
	}

	s := Summary{Date: date, RaceCount: len(races), EntryCount: len(entries)}
	for _, w := range winners {
		s.Winners = append(s.Winners, winnerLine{
			RaceID:               w.RaceID,
			WinningHorseNumber:   w.WinningHorseNumber,
			ExtractionMethod:     w.ExtractionMethod,
			ExtractionConfidence: w.ExtractionConfidence,
			WinningPayout2Dollar: w.WinningPayout2Dollar,
		})
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, s); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return out.String(), nil
}

// Send emails the report body via the configured SMTP relay.
func Send(smtpAddr, from, to, date, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Race data summary %s\r\n\r\n%s",
		from, to, date, body)
	if err := smtp.SendMail(smtpAddr, nil, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

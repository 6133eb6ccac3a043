package normalize

import "strings"

// trackNames maps the short wagering code to the canonical track name used in
// the race_winners key format ("AQUEDUCT 04-27-25 Race 3").
var trackNames = map[string]string{
	"AQU": "AQUEDUCT",
	"BAQ": "BELMONT AT AQUEDUCT",
	"BEL": "BELMONT PARK",
	"CD":  "CHURCHILL DOWNS",
	"CT":  "CHARLES TOWN",
	"DMR": "DEL MAR",
	"DUN": "DUNDALK",
	"ED":  "ELLIS PARK",
	"FG":  "FAIR GROUNDS",
	"GG":  "GOLDEN GATE FIELDS",
	"GP":  "GULFSTREAM PARK",
	"HAW": "HAWTHORNE",
	"IND": "HORSESHOE INDIANAPOLIS",
	"KEE": "KEENELAND",
	"LRL": "LAUREL PARK",
	"LS":  "LONE STAR PARK",
	"MTH": "MONMOUTH PARK",
	"MVR": "MAHONING VALLEY",
	"OP":  "OAKLAWN PARK",
	"PEN": "PENN NATIONAL",
	"PIM": "PIMLICO",
	"PRX": "PARX RACING",
	"SA":  "SANTA ANITA",
	"SAR": "SARATOGA",
	"TAM": "TAMPA BAY DOWNS",
	"TP":  "TURFWAY PARK",
	"WO":  "WOODBINE",
}

// trackCodes is the reverse lookup, name -> code.
var trackCodes = func() map[string]string {
	m := make(map[string]string, len(trackNames))
	for code, name := range trackNames {
		m[name] = code
	}
	return m
}()

// ExtractTrackCode resolves the short code for a track given either its code
// or its full name. Unknown tracks fall back to the first three letters so
// ingestion still produces a stable race id.
func ExtractTrackCode(track string) string {
	t := strings.ToUpper(strings.TrimSpace(track))
	if _, ok := trackNames[t]; ok {
		return t
	}
	if code, ok := trackCodes[t]; ok {
		return code
	}
	compact := strings.ReplaceAll(t, " ", "")
	if len(compact) > 3 {
		compact = compact[:3]
	}
	return compact
}

// StandardizeTrackName returns the canonical full name for a track given
// either its code or name. Unknown tracks keep their uppercased input.
func StandardizeTrackName(track string) string {
	t := strings.ToUpper(strings.TrimSpace(track))
	if name, ok := trackNames[t]; ok {
		return name
	}
	if _, ok := trackCodes[t]; ok {
		return t
	}
	return t
}

package sources

import (
	"fmt"
	"regexp"
)

var (
	csvMarkers     = regexp.MustCompile(`(?i)(output=csv|format=csv|/export|\.csv$)`)
	gvizMarker     = regexp.MustCompile(`(?i)/gviz/tq`)
	htmlMarkers    = regexp.MustCompile(`(?i)(/pubhtml|output=html|\.html?$)`)
	csvOutputParam = regexp.MustCompile(`(?i)(format|output)=csv`)
	spreadsheetRef = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
)

// IsCSVURL reports whether the URL points at a CSV export.
func IsCSVURL(rawURL string) bool {
	return csvMarkers.MatchString(rawURL)
}

// DetectType picks the source type for a spreadsheet URL. URLs with no
// recognizable marker are treated as tabular-query endpoints.
func DetectType(rawURL string) string {
	switch {
	case IsCSVURL(rawURL):
		return TypeCSV
	case gvizMarker.MatchString(rawURL):
		return TypeGviz
	case htmlMarkers.MatchString(rawURL):
		return TypeHTML
	default:
		return TypeGviz
	}
}

// NormalizeSheetURL rewrites sharing/edit links into the tabular-query JSON
// endpoint. CSV exports and gviz endpoints are returned unchanged.
func NormalizeSheetURL(rawURL string) string {
	if IsCSVURL(rawURL) || gvizMarker.MatchString(rawURL) {
		return rawURL
	}
	if id := spreadsheetID(rawURL); id != "" {
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:json", id)
	}
	return rawURL
}

// CSVExportURL makes sure a spreadsheet link requests CSV output.
func CSVExportURL(rawURL string) string {
	if csvOutputParam.MatchString(rawURL) {
		return rawURL
	}
	if id := spreadsheetID(rawURL); id != "" {
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", id)
	}
	return rawURL
}

func spreadsheetID(rawURL string) string {
	m := spreadsheetRef.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

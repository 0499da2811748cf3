package normalize

import "strings"

// Closed degree-level vocabulary.
const (
	DegreeBachelor   = "bachelor"
	DegreeMasters    = "masters"
	DegreePhD        = "phd"
	DegreeResearch   = "research"
	DegreeConference = "conference"
	DegreeInternship = "internship"
	DegreeFellowship = "fellowship"
	DegreeProgram    = "program"
)

// DegreeLevels lists the canonical degree levels.
var DegreeLevels = []string{
	DegreeBachelor, DegreeMasters, DegreePhD, DegreeResearch,
	DegreeConference, DegreeInternship, DegreeFellowship, DegreeProgram,
}

var degreeSynonyms = map[string]string{
	"bachelor":      DegreeBachelor,
	"bachelors":     DegreeBachelor,
	"undergraduate": DegreeBachelor,
	"masters":       DegreeMasters,
	"master":        DegreeMasters,
	"ms":            DegreeMasters,
	"m.sc":          DegreeMasters,
	"phd":           DegreePhD,
	"ph.d":          DegreePhD,
	"ph.d.":         DegreePhD,
	"doctorate":     DegreePhD,
	"doctoral":      DegreePhD,
	"research":      DegreeResearch,
	"conference":    DegreeConference,
	"confrence":     DegreeConference,
	"internship":    DegreeInternship,
	"fellowship":    DegreeFellowship,
	"program":       DegreeProgram,
	"programme":     DegreeProgram,
}

// DegreeLevel maps free text onto the degree vocabulary. Unknown values are
// returned lower-cased and trimmed rather than rejected. A comma-joined cell is
// normalized token by token and re-joined with ", ".
func DegreeLevel(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if !listDelimiter.MatchString(raw) {
		return degreeToken(raw)
	}

	tokens := Split(raw)
	for i, t := range tokens {
		tokens[i] = degreeToken(t)
	}
	return strings.Join(tokens, ", ")
}

func degreeToken(tok string) string {
	if canonical, ok := degreeSynonyms[tok]; ok {
		return canonical
	}
	return tok
}

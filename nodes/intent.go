package nodes

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/tripstate"
)

const intentSystemPrompt = `You extract structured trip-planning constraints from a traveler's request.
Reply with ONLY a JSON object of this exact shape, omitting fields you cannot infer:
{"origin":"","destinations":[],"start_date":"YYYY-MM-DD","end_date":"YYYY-MM-DD","budget_usd":0,"travelers":0,"interests":[],"pace":"relaxed|balanced|packed","notes":[]}`

type intentJSON struct {
	Origin       string   `json:"origin"`
	Destinations []string `json:"destinations"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	BudgetUSD    float64  `json:"budget_usd"`
	Travelers    int      `json:"travelers"`
	Interests    []string `json:"interests"`
	Pace         string   `json:"pace"`
	Notes        []string `json:"notes"`
}

var (
	fencedJSONBlock = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	isoDatePattern  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	originPattern   = regexp.MustCompile(`(?i)\b(?:from|flying from|departing from)\s+([A-Z][A-Za-z]+(?:\s[A-Z][A-Za-z]+)*)`)
	destPattern     = regexp.MustCompile(`(?i)\b(?:travel|trip|going|visit)\b[^,.]*?\bto\s+([A-Z][A-Za-z]+(?:\s[A-Z][A-Za-z]+)*)`)
	travelersPatt   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:travelers|people|pax)\b`)
	budgetPattern   = regexp.MustCompile(`(?i)budget[^0-9$]*\$?\s*([0-9][0-9,]*)`)
	pacePattern     = regexp.MustCompile(`(?i)\b(relaxed|balanced|packed)\b`)
	interestsPatt   = regexp.MustCompile(`(?i)(?:interests?:|i like)\s*([a-zA-Z ,&]+)`)
)

// NewIntentNode builds the intent-parsing node (spec.md §4.4).
func NewIntentNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		parsed, ok := requestAndParseIntent(ctx, d, s.UserQuery)
		var c tripstate.Constraints
		if ok {
			c = fromIntentJSON(parsed)
		}
		heuristicFill(&c, s.UserQuery)

		if s.HasOverrides {
			applyOverrides(&c, s.ConstraintOverrides)
			s.HasOverrides = false
			s.ConstraintOverrides = tripstate.Constraints{}
		}

		s.Constraints = c

		missing := missingCoreFields(c)
		if len(missing) > 0 {
			s.NeedsUserInput = true
			s.ClarifyingQuestions = clarifyingQuestions(missing)
			s.TerminationReason = tripstate.TerminationAskedUser
			return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
		}

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

// requestAndParseIntent invokes the model, under fault injection, to
// extract structured constraints. A real or fault-injected error here
// degrades gracefully to heuristicFill rather than failing the run — the
// fallback ok=false the caller already handles.
func requestAndParseIntent(ctx context.Context, d *Deps, userQuery string) (intentJSON, bool) {
	if d.Model == nil {
		return intentJSON{}, false
	}
	raw, err := d.Model.InvokeText(ctx, llm.Request{System: intentSystemPrompt, User: userQuery, Tags: []string{"intent"}})
	if err == nil && d.Fault != nil {
		err = d.Fault.MaybeLLMError()
	}
	if err != nil {
		return intentJSON{}, false
	}
	return parseIntentJSON(raw)
}

// parseIntentJSON tries strategies in order: direct JSON, a fenced ```json
// block, the first balanced {...} span by brace counting, and finally a
// lenient field-by-field read of that span via gjson for models that emit
// a type-mismatched field strict decoding won't tolerate.
func parseIntentJSON(raw string) (intentJSON, bool) {
	var out intentJSON
	trimmed := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, true
	}

	if m := fencedJSONBlock.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil {
			return out, true
		}
	}

	if span := firstBalancedBraces(raw); span != "" {
		if err := json.Unmarshal([]byte(span), &out); err == nil {
			return out, true
		}
		if lenient, ok := lenientIntentFromSpan(span); ok {
			return lenient, true
		}
	}

	return intentJSON{}, false
}

func firstBalancedBraces(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func fromIntentJSON(j intentJSON) tripstate.Constraints {
	pace := tripstate.Pace(strings.ToLower(j.Pace))
	if !pace.IsValid() {
		pace = ""
	}
	return tripstate.Constraints{
		Origin:       strings.TrimSpace(j.Origin),
		Destinations: trimAll(j.Destinations),
		StartDate:    strings.TrimSpace(j.StartDate),
		EndDate:      strings.TrimSpace(j.EndDate),
		BudgetUSD:    j.BudgetUSD,
		Travelers:    j.Travelers,
		Interests:    trimAll(j.Interests),
		Pace:         pace,
		Notes:        j.Notes,
	}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// heuristicFill appends regex-extracted values for fields still missing
// after LLM parsing, recording provenance in Notes so it's auditable
// (spec.md §9: "heuristic fills append to notes so provenance is
// auditable").
func heuristicFill(c *tripstate.Constraints, userQuery string) {
	if c.StartDate == "" || c.EndDate == "" {
		dates := isoDatePattern.FindAllString(userQuery, -1)
		if len(dates) >= 1 && c.StartDate == "" {
			c.StartDate = dates[0]
			c.Notes = append(c.Notes, "start_date heuristically extracted from query")
		}
		if len(dates) >= 2 && c.EndDate == "" {
			c.EndDate = dates[1]
			c.Notes = append(c.Notes, "end_date heuristically extracted from query")
		}
	}
	if c.Origin == "" {
		if m := originPattern.FindStringSubmatch(userQuery); m != nil {
			c.Origin = strings.TrimSpace(m[1])
			c.Notes = append(c.Notes, "origin heuristically extracted from query")
		}
	}
	if len(c.Destinations) == 0 {
		if m := destPattern.FindStringSubmatch(userQuery); m != nil {
			c.Destinations = []string{strings.TrimSpace(m[1])}
			c.Notes = append(c.Notes, "destination heuristically extracted from query")
		}
	}
	if c.Travelers == 0 {
		if m := travelersPatt.FindStringSubmatch(userQuery); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				c.Travelers = n
				c.Notes = append(c.Notes, "travelers heuristically extracted from query")
			}
		}
	}
	if c.BudgetUSD == 0 {
		if m := budgetPattern.FindStringSubmatch(userQuery); m != nil {
			cleaned := strings.ReplaceAll(m[1], ",", "")
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				c.BudgetUSD = f
				c.Notes = append(c.Notes, "budget heuristically extracted from query")
			}
		}
	}
	if c.Pace == "" {
		if m := pacePattern.FindStringSubmatch(userQuery); m != nil {
			c.Pace = tripstate.Pace(strings.ToLower(m[1]))
			c.Notes = append(c.Notes, "pace heuristically extracted from query")
		}
	}
	if len(c.Interests) == 0 {
		if m := interestsPatt.FindStringSubmatch(userQuery); m != nil {
			for _, part := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == '&' }) {
				if t := strings.TrimSpace(part); t != "" {
					c.Interests = append(c.Interests, t)
				}
			}
			c.Notes = append(c.Notes, "interests heuristically extracted from query")
		}
	}
}

// applyOverrides merges override fields onto c with best-effort typed
// coercion; non-zero override fields always win.
func applyOverrides(c *tripstate.Constraints, o tripstate.Constraints) {
	if o.Origin != "" {
		c.Origin = o.Origin
	}
	if len(o.Destinations) > 0 {
		c.Destinations = o.Destinations
	}
	if o.StartDate != "" {
		c.StartDate = o.StartDate
	}
	if o.EndDate != "" {
		c.EndDate = o.EndDate
	}
	if o.BudgetUSD != 0 {
		c.BudgetUSD = o.BudgetUSD
	}
	if o.Travelers != 0 {
		c.Travelers = o.Travelers
	}
	if len(o.Interests) > 0 {
		c.Interests = o.Interests
	}
	if o.Pace != "" {
		c.Pace = o.Pace
	}
}

func missingCoreFields(c tripstate.Constraints) []string {
	var missing []string
	if len(c.Destinations) == 0 {
		missing = append(missing, "destination")
	}
	if c.StartDate == "" {
		missing = append(missing, "start_date")
	}
	if c.EndDate == "" {
		missing = append(missing, "end_date")
	}
	if c.Origin == "" {
		missing = append(missing, "origin")
	}
	return missing
}

var clarifyingQuestionText = map[string]string{
	"destination": "Where would you like to go?",
	"start_date":  "What date does your trip start (YYYY-MM-DD)?",
	"end_date":    "What date does your trip end (YYYY-MM-DD)?",
	"origin":      "Where are you departing from?",
}

func clarifyingQuestions(missing []string) []string {
	qs := make([]string, 0, len(missing))
	for _, field := range missing {
		if len(qs) == 4 {
			break
		}
		qs = append(qs, clarifyingQuestionText[field])
	}
	return qs
}

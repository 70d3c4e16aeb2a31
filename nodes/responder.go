package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

const disclaimerLine = "Verify with official sources before booking; this is not legal advice."

var (
	boldOnlyLine     = regexp.MustCompile(`(?m)^\s*\*\*(.+?)\*\*\s*$`)
	setextUnderline  = regexp.MustCompile(`(?m)^(.+)\n[=-]{3,}\s*$`)
	headingPattern   = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	disclaimerPatt   = regexp.MustCompile(`(?i)verify with official sources|not legal advice`)
	respCurrencyTok  = regexp.MustCompile(`(?i)\$\d+(\.\d+)?|USD\s?\d+|\d+\s?USD`)
	respPriceColloc  = regexp.MustCompile(`(?i)(price|prices|cost|fare).{0,25}\d|\d.{0,25}(price|prices|cost|fare)`)
)

var requiredResponderSections = []string{
	"Summary", "Flights", "Lodging", "Day-by-day", "Transit", "Weather", "Budget", "Calendar",
}

var missingTokenText = map[string]string{
	"destination": "destination",
	"start_date":  "start date",
	"end_date":    "end date",
	"origin":      "origin",
	"budget":      "budget",
	"travelers":   "travelers",
}

// NewResponderNode builds the answer-normalization node (spec.md §4.8).
func NewResponderNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		answer := s.FinalAnswer
		answer = normalizeHeadings(answer)
		answer = ensureSections(answer, s)
		answer = ensureAssumptions(answer, s)
		answer = ensureSingleDisclaimer(answer)
		answer = stripCurrency(answer)

		s.FinalAnswer = answer
		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

// normalizeHeadings converts bold-only lines and setext-underlined lines
// into ATX `## Title` headings.
func normalizeHeadings(text string) string {
	text = setextUnderline.ReplaceAllString(text, "## $1")
	text = boldOnlyLine.ReplaceAllString(text, "## $1")
	return text
}

func presentSections(text string) map[string]bool {
	present := map[string]bool{}
	for _, m := range headingPattern.FindAllStringSubmatch(text, -1) {
		present[strings.TrimSpace(m[1])] = true
	}
	return present
}

// ensureSections fills in any of the eight required sections missing from
// text, preferring tool results and falling back to deterministic links.
func ensureSections(text string, s *tripstate.State) string {
	present := presentSections(text)
	var b strings.Builder
	b.WriteString(text)

	for _, section := range requiredResponderSections {
		if present[section] {
			continue
		}
		b.WriteString("\n\n## ")
		b.WriteString(section)
		b.WriteString("\n")
		b.WriteString(fallbackSectionBody(section, s))
	}
	return b.String()
}

func fallbackSectionBody(section string, s *tripstate.State) string {
	c := s.Constraints
	switch section {
	case "Summary":
		return fmt.Sprintf("Trip from %s to %s.", c.Origin, strings.Join(c.Destinations, ", "))
	case "Flights":
		return linksForTool(s, "flights_search_links", "Search flights yourself using the links below.")
	case "Lodging":
		return linksForTool(s, "hotels_search_links", "Search lodging yourself using the links below.")
	case "Day-by-day":
		return "No detailed day-by-day itinerary is available."
	case "Transit":
		return linksForTool(s, "distance_and_time", "No transit details available.")
	case "Weather":
		return linksForTool(s, "weather_summary", "No weather summary available.")
	case "Budget":
		if c.BudgetUSD > 0 {
			return "A budget was specified; see Assumptions for details."
		}
		return "No budget was specified."
	case "Calendar":
		if s.ICSPath != "" {
			return "A calendar file was generated for this itinerary."
		}
		return "No calendar file was generated."
	default:
		return ""
	}
}

func linksForTool(s *tripstate.State, toolName, fallback string) string {
	var b strings.Builder
	found := false
	for _, r := range s.ToolResults {
		if r.ToolName != toolName {
			continue
		}
		found = true
		if r.Summary != "" {
			b.WriteString(r.Summary)
			b.WriteString("\n")
		}
		for _, l := range r.Links {
			fmt.Fprintf(&b, "- [%s](%s)\n", l.Label, l.URL)
		}
	}
	if !found {
		return fallback
	}
	return strings.TrimSpace(b.String())
}

// ensureAssumptions appends missing-constraint tokens to the Assumptions
// section, creating it if needed.
func ensureAssumptions(text string, s *tripstate.State) string {
	missing := missingConstraintTokens(s.Constraints)
	if len(missing) == 0 {
		return text
	}

	tokens := make([]string, 0, len(missing))
	for _, m := range missing {
		tokens = append(tokens, missingTokenText[m])
	}
	line := "Assumed/missing: " + strings.Join(tokens, ", ") + "."

	if strings.Contains(strings.ToLower(text), "## assumptions") {
		idx := strings.Index(strings.ToLower(text), "## assumptions")
		insertAt := idx + len("## assumptions")
		return text[:insertAt] + "\n" + line + text[insertAt:]
	}

	return text + "\n\n## Assumptions\n" + line
}

func missingConstraintTokens(c tripstate.Constraints) []string {
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
	if c.BudgetUSD == 0 {
		missing = append(missing, "budget")
	}
	if c.Travelers == 0 {
		missing = append(missing, "travelers")
	}
	return missing
}

// ensureSingleDisclaimer guarantees exactly one occurrence of the
// disclaimer, appending it if absent and trimming any extras.
func ensureSingleDisclaimer(text string) string {
	matches := disclaimerPatt.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return strings.TrimRight(text, "\n") + "\n\n" + disclaimerLine
	}
	if len(matches) == 1 {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	kept := false
	for _, line := range lines {
		if disclaimerPatt.MatchString(line) {
			if kept {
				continue
			}
			kept = true
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// stripCurrency redacts fabricated-sounding price facts (spec.md §4.8).
func stripCurrency(text string) string {
	text = respCurrencyTok.ReplaceAllString(text, "[price omitted]")
	text = respPriceColloc.ReplaceAllString(text, "[price omitted]")
	return text
}

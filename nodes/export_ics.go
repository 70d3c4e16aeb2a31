package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

var slugDisallowed = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 60

// NewExportICSNode builds the calendar-export node (spec.md §4.9).
func NewExportICSNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if s.Constraints.StartDate == "" || s.Constraints.EndDate == "" {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		start, err := time.Parse("2006-01-02", s.Constraints.StartDate)
		if err != nil {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}
		end, err := time.Parse("2006-01-02", s.Constraints.EndDate)
		if err != nil {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		tripName := tripNameFor(s.Constraints)
		ics, eventCount := buildICS(tripName, start, end, s.ItineraryDayTitles)

		slug := slugify(tripName)
		path := filepath.Join(d.Config.RuntimeDir, "artifacts", fmt.Sprintf("%s-%s-itinerary.ics", slug, s.Constraints.StartDate))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			s.ValidationWarnings = append(s.ValidationWarnings, "could not create artifacts directory: "+err.Error())
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}
		if err := os.WriteFile(path, []byte(ics), 0o644); err != nil {
			s.ValidationWarnings = append(s.ValidationWarnings, "could not write ICS file: "+err.Error())
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		s.ICSPath = path
		s.ICSEventCount = eventCount
		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

func tripNameFor(c tripstate.Constraints) string {
	if len(c.Destinations) > 0 {
		return strings.Join(c.Destinations, " & ") + " trip"
	}
	return "trip"
}

func slugify(name string) string {
	lower := strings.ToLower(name)
	slug := slugDisallowed.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	if slug == "" {
		slug = "trip"
	}
	return slug
}

// buildICS renders a VCALENDAR with one all-day VEVENT per date in
// [start, end] inclusive, titled from dayTitles (padded by repeating the
// last entry).
func buildICS(tripName string, start, end time.Time, dayTitles []string) (string, int) {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//tripchat//itinerary//EN\r\n")

	count := 0
	day := start
	i := 0
	for !day.After(end) {
		title := dayTitleFor(dayTitles, i)
		dateStamp := day.Format("20060102")
		nextDay := day.AddDate(0, 0, 1).Format("20060102")

		fmt.Fprintf(&b, "BEGIN:VEVENT\r\nUID:%s-%d@tripchat\r\nDTSTAMP:%sT000000Z\r\nDTSTART;VALUE=DATE:%s\r\nDTEND;VALUE=DATE:%s\r\nSUMMARY:%s: %s\r\nEND:VEVENT\r\n",
			slugify(tripName), i, dateStamp, dateStamp, nextDay, tripName, title)

		count++
		i++
		day = day.AddDate(0, 0, 1)
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String(), count
}

func dayTitleFor(dayTitles []string, i int) string {
	if len(dayTitles) == 0 {
		return fmt.Sprintf("Day %d", i+1)
	}
	if i < len(dayTitles) {
		return dayTitles[i]
	}
	return dayTitles[len(dayTitles)-1]
}

package eval

import (
	"regexp"
	"strings"
)

var (
	timeMention   = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}|morning|afternoon|evening\b`)
	bulletLine    = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	travelPhrase  = regexp.MustCompile(`(?i)travel time|transit|distance`)
	requiredSects = []string{"Summary", "Flights", "Lodging", "Day-by-day", "Transit", "Weather", "Budget", "Calendar", "Assumptions"}
)

// ComputeRubric scores the five 0-5 axes against in, per spec.md §4.10's
// formulas.
func ComputeRubric(in Input) Rubric {
	return Rubric{
		Relevance:    relevance(in),
		Feasibility:  feasibility(in),
		Completeness: completeness(in),
		Specificity:  specificity(in),
		Coherence:    coherence(in),
	}
}

func relevance(in Input) float64 {
	n := len(in.Interests)
	if n == 0 {
		return 3.5
	}
	lower := strings.ToLower(in.FinalAnswer)
	hits := 0
	for _, interest := range in.Interests {
		if interest != "" && strings.Contains(lower, strings.ToLower(interest)) {
			hits++
		}
	}
	denom := n
	if denom > 5 {
		denom = 5
	}
	if denom < 1 {
		denom = 1
	}
	score := 2.0 + 3.0*float64(hits)/float64(denom)
	return clamp(score, 0, 5)
}

func feasibility(in Input) float64 {
	if travelPhrase.MatchString(in.FinalAnswer) {
		return 4.0
	}
	return 3.0
}

func completeness(in Input) float64 {
	lower := strings.ToLower(in.FinalAnswer)
	found := 0
	for _, section := range requiredSects {
		if strings.Contains(lower, strings.ToLower(section)) {
			found++
		}
	}
	return 5.0 * float64(found) / float64(len(requiredSects))
}

func specificity(in Input) float64 {
	timeMentions := len(timeMention.FindAllString(in.FinalAnswer, -1))
	bullets := len(bulletLine.FindAllString(in.FinalAnswer, -1))

	timeScore := float64(timeMentions) / 6.0 * 2.5
	if timeScore > 2.5 {
		timeScore = 2.5
	}
	bulletScore := float64(bullets) / 20.0 * 2.5
	if bulletScore > 2.5 {
		bulletScore = 2.5
	}
	return timeScore + bulletScore
}

func coherence(in Input) float64 {
	score := 5.0
	lower := strings.ToLower(in.FinalAnswer)

	if in.Destination != "" && !strings.Contains(lower, strings.ToLower(in.Destination)) {
		score -= 2
	}
	if in.StartDate != "" && !strings.Contains(in.FinalAnswer, in.StartDate) {
		score -= 1
	}
	if in.EndDate != "" && !strings.Contains(in.FinalAnswer, in.EndDate) {
		score -= 1
	}
	return clamp(score, 0, 5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package nodes

import "github.com/tidwall/gjson"

// lenientIntentFromSpan is the last-resort strategy parseIntentJSON falls
// back to when strict encoding/json rejects a balanced-braces span outright
// — typically because the model emitted a number field as a quoted string
// ("budget_usd":"4500") or vice versa. gjson's accessors coerce across that
// mismatch instead of erroring, so a span encoding/json can't decode at all
// can still yield most of its fields.
func lenientIntentFromSpan(span string) (intentJSON, bool) {
	if !gjson.Valid(span) {
		return intentJSON{}, false
	}
	root := gjson.Parse(span)
	if !root.IsObject() {
		return intentJSON{}, false
	}

	out := intentJSON{
		Origin:    root.Get("origin").String(),
		StartDate: root.Get("start_date").String(),
		EndDate:   root.Get("end_date").String(),
		BudgetUSD: root.Get("budget_usd").Float(),
		Travelers: int(root.Get("travelers").Int()),
		Pace:      root.Get("pace").String(),
	}
	for _, r := range root.Get("destinations").Array() {
		out.Destinations = append(out.Destinations, r.String())
	}
	for _, r := range root.Get("interests").Array() {
		out.Interests = append(out.Interests, r.String())
	}
	for _, r := range root.Get("notes").Array() {
		out.Notes = append(out.Notes, r.String())
	}
	return out, true
}

// lenientPlanFromSpan is parsePlanJSON's equivalent fallback: a plan step's
// tool_args is a free-form map, so a single malformed value anywhere in the
// array fails strict decoding of the whole plan. gjson lets each step stand
// on its own; a step that still can't produce a title/step_type is dropped
// rather than sunk by a sibling's bad field.
func lenientPlanFromSpan(span string) (planJSON, bool) {
	if !gjson.Valid(span) {
		return planJSON{}, false
	}
	root := gjson.Parse(span)
	steps := root.Get("plan")
	if !steps.IsArray() {
		return planJSON{}, false
	}

	var out planJSON
	steps.ForEach(func(_, step gjson.Result) bool {
		title := step.Get("title").String()
		stepType := step.Get("step_type").String()
		if title == "" && stepType == "" {
			return true
		}
		s := planStepJSON{
			Title:    title,
			StepType: stepType,
			ToolName: step.Get("tool_name").String(),
		}
		if args := step.Get("tool_args"); args.IsObject() {
			s.ToolArgs = map[string]any{}
			for k, v := range args.Map() {
				s.ToolArgs[k] = v.Value()
			}
		}
		for _, n := range step.Get("notes").Array() {
			s.Notes = append(s.Notes, n.String())
		}
		out.Plan = append(out.Plan, s)
		return true
	})
	return out, len(out.Plan) > 0
}

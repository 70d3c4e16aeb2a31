package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/tripstate"
)

func TestRegister_WiresAllNodesWithoutError(t *testing.T) {
	d := testDeps()
	d.Model = &llm.MockModel{Responses: []string{
		`{"origin":"BOS","destinations":["Tokyo"],"start_date":"2026-09-01","end_date":"2026-09-03"}`,
		`{"plan":[{"title":"Flights","step_type":"TOOL_CALL","tool_name":"flights_search_links","tool_args":{"destination":"Tokyo"}},{"title":"Write","step_type":"SYNTHESIZE"}]}`,
		"## Summary\nA trip to Tokyo.\n\nVerify with official sources before booking; this is not legal advice.",
	}}

	engine := graph.New[*tripstate.State](nil, nil, graph.Options{RecursionLimit: 200})
	require.NoError(t, Register(engine, d))

	s := tripstate.NewState("run-1", "user-1", "trip to Tokyo from Boston 2026-09-01 2026-09-03", 25)
	final, err := engine.Run(context.Background(), "run-1", s)

	require.NoError(t, err)
	assert.NotEmpty(t, final.FinalAnswer)
	assert.NotNil(t, final.Evaluation)
}

func TestRegister_StopsAtIntentWhenCoreFieldsMissing(t *testing.T) {
	d := testDeps()
	d.Model = &llm.MockModel{Responses: []string{`{}`}}

	engine := graph.New[*tripstate.State](nil, nil, graph.Options{RecursionLimit: 200})
	require.NoError(t, Register(engine, d))

	s := tripstate.NewState("run-2", "user-1", "take me somewhere", 25)
	final, err := engine.Run(context.Background(), "run-2", s)

	require.NoError(t, err)
	assert.True(t, final.NeedsUserInput)
	assert.Nil(t, final.Evaluation)
}

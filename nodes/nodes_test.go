package nodes

import (
	"github.com/tripchat/tripplanner/config"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/toolkit"
	"github.com/tripchat/tripplanner/tripstate"
)

func testDeps() *Deps {
	cfg := config.Defaults()
	cfg.RuntimeDir = "/tmp/tripchat-nodes-test"
	return &Deps{
		Tools:  toolkit.NewDefaultRegistry(),
		Memory: memory.NewMockStore(),
		Config: cfg,
	}
}

func newTestState(query string) *tripstate.State {
	return tripstate.NewState("run-1", "user-1", query, 25)
}

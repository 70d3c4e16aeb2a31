// Package fault implements the deterministic fault injector: a seeded PRNG
// that flips coins at named sites (tool timeout, tool error, bad
// retrieval, LLM error) so tests can exercise the Executor's retry/triage
// paths and the Responder's graceful-degradation paths without a live
// collaborator actually failing.
package fault

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/rand"
	"time"
)

// ErrSimulatedTimeout and ErrSimulatedToolError are the sentinel values an
// injected failure returns. The injector never alters inputs — it only
// returns these sentinels or raises them (spec.md §4.12).
var (
	ErrSimulatedTimeout   = errors.New("fault: simulated tool timeout")
	ErrSimulatedToolError = errors.New("fault: simulated tool error")
	ErrSimulatedLLMError  = errors.New("fault: simulated llm error")
)

// Site names the location a probability applies to.
type Site string

const (
	SiteToolTimeout  Site = "tool_timeout"
	SiteToolError    Site = "tool_error"
	SiteBadRetrieval Site = "bad_retrieval"
	SiteLLMError     Site = "llm_error"
)

// Injector is a seeded fault injector. Seeding follows the teacher's
// initRNG idiom (graph/engine.go): SHA-256(seed string), first 8 bytes as
// an int64 seed, so the same FAILURE_SEED env var always reproduces the
// same sequence of injected failures across a test run.
type Injector struct {
	rng           *rand.Rand
	enabled       map[Site]bool
	probabilities map[Site]float64
}

// NewInjector builds an Injector seeded from seed (typically the
// FAILURE_SEED env var, or the run_id when unset). No site is enabled
// until EnableSite is called.
func NewInjector(seed string) *Injector {
	hasher := sha256.New()
	hasher.Write([]byte(seed))
	digest := hasher.Sum(nil)
	rngSeed := int64(binary.BigEndian.Uint64(digest[:8])) // #nosec G115 -- deterministic seeding
	return &Injector{
		rng:           rand.New(rand.NewSource(rngSeed)), // #nosec G404 -- deterministic by design
		enabled:       make(map[Site]bool),
		probabilities: make(map[Site]float64),
	}
}

// EnableSite turns on fault injection at site with the given probability
// in [0,1].
func (inj *Injector) EnableSite(site Site, probability float64) {
	inj.enabled[site] = true
	inj.probabilities[site] = probability
}

// ShouldFail reports whether site should fail on this call:
// enabled && rng.Float64() < probability.
func (inj *Injector) ShouldFail(site Site) bool {
	if !inj.enabled[site] {
		return false
	}
	return inj.rng.Float64() < inj.probabilities[site]
}

// MaybeToolTimeout sleeps briefly then returns ErrSimulatedTimeout if the
// tool-timeout site fires; otherwise returns nil immediately.
func (inj *Injector) MaybeToolTimeout() error {
	if inj.ShouldFail(SiteToolTimeout) {
		time.Sleep(10 * time.Millisecond)
		return ErrSimulatedTimeout
	}
	return nil
}

// MaybeToolError returns ErrSimulatedToolError if the tool-error site
// fires.
func (inj *Injector) MaybeToolError() error {
	if inj.ShouldFail(SiteToolError) {
		return ErrSimulatedToolError
	}
	return nil
}

// MaybeLLMError returns ErrSimulatedLLMError if the llm-error site fires.
func (inj *Injector) MaybeLLMError() error {
	if inj.ShouldFail(SiteLLMError) {
		return ErrSimulatedLLMError
	}
	return nil
}

// MaybeBadRetrieval reports whether the bad-retrieval site fired. Callers
// that get true should return an empty hit set or a single off-topic
// document rather than the real search result (spec.md §4.12).
func (inj *Injector) MaybeBadRetrieval() bool {
	return inj.ShouldFail(SiteBadRetrieval)
}

package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjector_DeterministicForSameSeed(t *testing.T) {
	a := NewInjector("run-123")
	b := NewInjector("run-123")
	a.EnableSite(SiteToolError, 0.5)
	b.EnableSite(SiteToolError, 0.5)

	var seqA, seqB []bool
	for i := 0; i < 20; i++ {
		seqA = append(seqA, a.ShouldFail(SiteToolError))
		seqB = append(seqB, b.ShouldFail(SiteToolError))
	}
	assert.Equal(t, seqA, seqB)
}

func TestInjector_DisabledSiteNeverFails(t *testing.T) {
	inj := NewInjector("run-abc")
	for i := 0; i < 50; i++ {
		assert.False(t, inj.ShouldFail(SiteToolTimeout))
	}
}

func TestInjector_ProbabilityOneAlwaysFails(t *testing.T) {
	inj := NewInjector("run-xyz")
	inj.EnableSite(SiteLLMError, 1.0)
	for i := 0; i < 10; i++ {
		require.True(t, inj.ShouldFail(SiteLLMError))
	}
}

func TestInjector_MaybeToolErrorReturnsSentinel(t *testing.T) {
	inj := NewInjector("seed")
	inj.EnableSite(SiteToolError, 1.0)
	err := inj.MaybeToolError()
	require.ErrorIs(t, err, ErrSimulatedToolError)
}

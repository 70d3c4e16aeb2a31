package geocode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIATA(t *testing.T) {
	assert.True(t, IsIATA("SFO"))
	assert.True(t, IsIATA("jfk"))
	assert.False(t, IsIATA("San Francisco"))
	assert.False(t, IsIATA("SF"))
}

func TestIsSuspiciousName(t *testing.T) {
	assert.True(t, IsSuspiciousName("abc123"), "contains digits")
	assert.True(t, IsSuspiciousName("xqzvfthrw"), "low vowel ratio, single token len>=10")
	assert.True(t, IsSuspiciousName("zzzzzzzz"), "6+ consonant run")
	assert.False(t, IsSuspiciousName("Tokyo"))
	assert.False(t, IsSuspiciousName(""))
}

func TestDetermineAmbiguous(t *testing.T) {
	candidates := []Candidate{
		{Name: "Portland", Country: "United States", Admin1: "Oregon"},
		{Name: "Portland", Country: "United States", Admin1: "Maine"},
	}
	assert.True(t, DetermineAmbiguous("Portland", candidates))
	assert.False(t, DetermineAmbiguous("Portland, Oregon", candidates), "comma already disambiguates")
}

func TestStaticGeocoder_PortlandIsAmbiguous(t *testing.T) {
	g := NewStaticGeocoder()
	res, err := g.Geocode(context.Background(), "Portland")
	require.NoError(t, err)
	assert.True(t, res.Ambiguous)
	assert.Len(t, res.Candidates, 2)
	assert.Nil(t, res.Best)
}

func TestStaticGeocoder_PeruAutopicks(t *testing.T) {
	g := NewStaticGeocoder()
	res, err := g.Geocode(context.Background(), "Peru")
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, "country_name_self_match", res.Best.AutopickedReason)
	assert.False(t, res.Ambiguous)
}

func TestStaticGeocoder_UnknownPlaceHasNoBest(t *testing.T) {
	g := NewStaticGeocoder()
	res, err := g.Geocode(context.Background(), "Nowheresville")
	require.NoError(t, err)
	assert.Nil(t, res.Best)
	assert.Empty(t, res.Candidates)
}

func TestMockGeocoder_Sequencing(t *testing.T) {
	m := &MockGeocoder{Responses: []Result{
		{Best: &Candidate{Name: "Tokyo"}},
	}}
	res, err := m.Geocode(context.Background(), "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", res.Best.Name)
	assert.Equal(t, 1, m.CallCount())
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOptionAnswer_NumericSelection(t *testing.T) {
	options := []string{"Paris, France", "Paris, Texas"}
	assert.Equal(t, "Paris, Texas", resolveOptionAnswer(options, "2"))
}

func TestResolveOptionAnswer_OrdinalPhrase(t *testing.T) {
	options := []string{"Paris, France", "Paris, Texas"}
	assert.Equal(t, "Paris, France", resolveOptionAnswer(options, "the first one"))
	assert.Equal(t, "Paris, Texas", resolveOptionAnswer(options, "option 2"))
}

func TestResolveOptionAnswer_SubstringMatch(t *testing.T) {
	options := []string{"Paris, France", "Paris, Texas"}
	assert.Equal(t, "Paris, Texas", resolveOptionAnswer(options, "Texas please"))
}

func TestResolveOptionAnswer_UnrecognizedFallsBackToRawAnswer(t *testing.T) {
	options := []string{"Paris, France", "Paris, Texas"}
	assert.Equal(t, "somewhere else", resolveOptionAnswer(options, "somewhere else"))
}

func TestResolveOptionAnswer_OutOfRangeNumberFallsBackToRawAnswer(t *testing.T) {
	options := []string{"Paris, France", "Paris, Texas"}
	assert.Equal(t, "5", resolveOptionAnswer(options, "5"))
}

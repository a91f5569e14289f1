package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketbrief/internal/model"
)

func TestSentimentSummary(t *testing.T) {
	obs := []model.MacroObservation{
		{Name: "VIX", Value: 12.5},
		{Name: "FED_RATE", Value: 4.5, HasPrevious: true, Previous: 4.25, Change: 0.25},
		{Name: "UNEMPLOYMENT", Value: 3.8},
	}
	got := SentimentSummary(obs)
	assert.Contains(t, got, "VIX low")
	assert.Contains(t, got, "Fed rate rising (4.50%)")
	assert.Contains(t, got, "unemployment low")
}

func TestSentimentSummaryStress(t *testing.T) {
	obs := []model.MacroObservation{
		{Name: "VIX", Value: 32},
		{Name: "FED_RATE", Value: 5.0, HasPrevious: true, Previous: 5.25, Change: -0.25},
		{Name: "UNEMPLOYMENT", Value: 6.5},
	}
	got := SentimentSummary(obs)
	assert.Contains(t, got, "VIX high")
	assert.Contains(t, got, "Fed rate falling")
	assert.Contains(t, got, "unemployment high")
}

func TestSentimentSummaryModerate(t *testing.T) {
	got := SentimentSummary([]model.MacroObservation{
		{Name: "VIX", Value: 20},
		{Name: "UNEMPLOYMENT", Value: 5.0},
	})
	assert.Equal(t, "VIX moderate", got)
}

func TestSentimentSummaryEmpty(t *testing.T) {
	assert.Equal(t, "insufficient macro data", SentimentSummary(nil))
	assert.Equal(t, "insufficient macro data", SentimentSummary([]model.MacroObservation{
		{Name: "CPI", Value: 300},
	}))
}

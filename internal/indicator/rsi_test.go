package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbrief/internal/model"
)

func TestRSIBalancedMoves(t *testing.T) {
	// Seven +1 and seven -1 changes: avg gain equals avg loss, RSI is 50.
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
		closes = append(closes, closes[len(closes)-1]-1)
	}
	r := RSI(closes, 14)
	require.True(t, r.Valid)
	assert.InDelta(t, 50.0, r.Value, 1e-9)
	assert.Equal(t, model.RSINeutral, r.State)
}

func TestRSIZeroLossUnavailable(t *testing.T) {
	// Strictly rising closes: zero average loss makes the ratio undefined.
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	r := RSI(closes, 14)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Reason, "zero average loss")
}

func TestRSIInsufficientSeries(t *testing.T) {
	closes := make([]float64, 14)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	r := RSI(closes, 14)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Reason, "need 15 closes")
}

func TestRSIOversold(t *testing.T) {
	// Thirteen -1 moves and one +0.1: heavily loss dominated.
	closes := []float64{100}
	for i := 0; i < 13; i++ {
		closes = append(closes, closes[len(closes)-1]-1)
	}
	closes = append(closes, closes[len(closes)-1]+0.1)
	r := RSI(closes, 14)
	require.True(t, r.Valid)
	assert.Less(t, r.Value, 30.0)
	assert.Equal(t, model.RSIOversold, r.State)
}

func TestRSIOverbought(t *testing.T) {
	closes := []float64{100}
	for i := 0; i < 13; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
	}
	closes = append(closes, closes[len(closes)-1]-0.1)
	r := RSI(closes, 14)
	require.True(t, r.Valid)
	assert.Greater(t, r.Value, 70.0)
	assert.Equal(t, model.RSIOverbought, r.State)
}

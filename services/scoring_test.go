package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gymratapp/gymrat-server/models"
)

func TestScoreFormulas(t *testing.T) {
	tests := []struct {
		name      string
		sport     string
		duration  int
		distance  float64
		totalSets int
		want      float64
	}{
		{"running per km", models.SportRunning, 30, 5, 0, 50},
		{"running fractional", models.SportRunning, 15, 2.5, 0, 25},
		{"cycling per km", models.SportCycling, 60, 10, 0, 40},
		{"swimming per 100m", models.SportSwimming, 45, 1500, 0, 75},
		{"gym duration plus sets", models.SportGym, 60, 0, 12, 84},
		{"playbacks half rate", models.SportPlaybacks, 90, 0, 0, 45},
		{"rugby", models.SportRugby, 80, 0, 0, 64},
		{"unknown sport scores zero", "chess", 120, 0, 0, 0},
		{"running ignores duration", models.SportRunning, 999, 1, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.sport, tt.duration, tt.distance, tt.totalSets), 1e-9)
		})
	}
}

func TestPointsFloorsFractions(t *testing.T) {
	// 2.55 km * 10 = 25.5, persisted as 25.
	assert.Equal(t, 25, Points(models.SportRunning, 20, 2.55, 0))
	// 45 min rugby * 0.8 = 36 exactly.
	assert.Equal(t, 36, Points(models.SportRugby, 45, 0, 0))
	// 75 min playbacks * 0.5 = 37.5, persisted as 37.
	assert.Equal(t, 37, Points(models.SportPlaybacks, 75, 0, 0))
}

func TestTotalSets(t *testing.T) {
	exercises := []models.Exercise{
		{Name: "bench", Sets: 4, Reps: 8},
		{Name: "squat", Sets: 5, Reps: 5},
		{Name: "broken row", Sets: -2},
		{Name: "skipped", Sets: 0},
	}
	assert.Equal(t, 9, TotalSets(exercises))
	assert.Equal(t, 0, TotalSets(nil))
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 5.2, ParseAmount("5.2"))
	assert.Equal(t, 3.0, ParseAmount(3))
	assert.Equal(t, 7.5, ParseAmount(7.5))
	assert.Equal(t, 0.0, ParseAmount("not a number"))
	assert.Equal(t, 0.0, ParseAmount(nil))
	assert.Equal(t, 0.0, ParseAmount([]string{"1"}))
}

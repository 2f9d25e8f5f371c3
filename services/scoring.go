package services

import (
	"math"
	"strconv"

	"github.com/gymratapp/gymrat-server/models"
)

// Score computes the fractional score for an activity. Pure function:
// no state, no I/O, never fails. Unknown sports and unparseable inputs
// score 0; rejecting a zero-point submission is the caller's policy.
//
// Formulas are a fixed business rule:
//
//	running    distance_km * 10
//	cycling    distance_km * 4
//	swimming   (distance_m / 100) * 5
//	gym        duration_min + total_sets * 2
//	playbacks  duration_min * 0.5
//	rugby      duration_min * 0.8
func Score(sportID string, duration int, distance float64, totalSets int) float64 {
	switch sportID {
	case models.SportRunning:
		return distance * 10
	case models.SportCycling:
		return distance * 4
	case models.SportSwimming:
		return (distance / 100) * 5
	case models.SportGym:
		return float64(duration) + float64(totalSets)*2
	case models.SportPlaybacks:
		return float64(duration) * 0.5
	case models.SportRugby:
		return float64(duration) * 0.8
	default:
		return 0
	}
}

// Points floors the fractional score to the integer value that gets
// persisted and displayed.
func Points(sportID string, duration int, distance float64, totalSets int) int {
	return int(math.Floor(Score(sportID, duration, distance, totalSets)))
}

// TotalSets sums the set counts of the logged exercises.
func TotalSets(exercises []models.Exercise) int {
	total := 0
	for _, ex := range exercises {
		if ex.Sets > 0 {
			total += ex.Sets
		}
	}
	return total
}

// ParseAmount coerces a loosely typed numeric input (the UI submits
// distances and set counts as strings) to a float. Anything that does
// not parse counts as 0 rather than an error.
func ParseAmount(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

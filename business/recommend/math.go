package recommend

import (
	"math"
	"time"
)

const decayRate = 0.1

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// daysBetween returns fractional days from a to b.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

// recencyDecay is weight * e^(-0.1 * days). Future timestamps count as zero days.
func recencyDecay(weight, days float64) float64 {
	if days < 0 {
		days = 0
	}
	return weight * math.Exp(-decayRate*days)
}

func percentage(score float64) int {
	return int(math.Round(score * 100))
}

// capacityAvailability is (1 - signups/capacity) * weight, only when a
// capacity is set and not yet reached.
func capacityAvailability(capacity *int, signups int, weight float64) float64 {
	if capacity == nil || *capacity <= 0 || signups >= *capacity {
		return 0
	}
	return (1 - float64(signups)/float64(*capacity)) * weight
}

// overlapRatio is |user ∩ event| / |user|, zero when the user has no interests.
func overlapRatio(user map[string]struct{}, eventInterests []string) float64 {
	if len(user) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(eventInterests))
	matched := 0
	for _, tag := range eventInterests {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := user[tag]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(user))
}

func affinitySum(weights map[string]float64, eventInterests []string) float64 {
	sum := 0.0
	for _, tag := range eventInterests {
		sum += weights[tag]
	}
	return sum
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out[v] = struct{}{}
	}
	return out
}

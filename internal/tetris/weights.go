package tetris

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseWeights reads a comma-separated list of exactly WeightCount
// non-negative integers. Spaces around values are ignored.
func ParseWeights(s string) (Weights, error) {
	var w Weights
	parts := strings.Split(s, ",")
	if len(parts) != WeightCount {
		return w, fmt.Errorf("weights: want %d comma-separated values, got %d", WeightCount, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return w, fmt.Errorf("weights: value %d: %w", i+1, err)
		}
		w[i] = v
	}
	return w, nil
}

// Encode renders the weights in the form ParseWeights reads.
func (w Weights) Encode() string {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ",")
}

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// findModel returns the model selected by the parameter filename, or the
// empty string when no model token is recognized.
func findModel(filename string) string {
	switch {
	case strings.Contains(filename, "Ising"):
		return "Ising1d"
	case strings.Contains(filename, "Heisenberg1d"):
		return "Heisenberg1d"
	case strings.Contains(filename, "Heisenberg2d"):
		return "Heisenberg2d"
	default:
		return ""
	}
}

// findCoupling extracts the coupling constant encoded between the second
// and third underscore of the parameter filename.
func findCoupling(filename string) (float64, error) {
	parts := strings.Split(filename, "_")
	if len(parts) < 4 {
		return 0, errors.Errorf("filename %q is not in the format specified for the Ising/Heisenberg model", filename)
	}
	coupling, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, errors.Wrap(err, filename)
	}
	return coupling, nil
}

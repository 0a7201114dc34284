package main

import (
	"testing"
)

func TestFindModel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filename string
		model    string
	}{
		{filename: "Ground/Ising1d_40_1_1.wf", model: "Ising1d"},
		{filename: "Ground/Heisenberg1d_40_1_1.wf", model: "Heisenberg1d"},
		{filename: "Ground/Heisenberg2d_100_1_1.wf", model: "Heisenberg2d"},
		{filename: "Ground/Hubbard_40_1_1.wf", model: ""},
		{filename: "", model: ""},
	}
	for _, test := range tests {
		t.Run(test.filename, func(t *testing.T) {
			t.Parallel()
			if model := findModel(test.filename); model != test.model {
				t.Fatalf("%q, expected %q", model, test.model)
			}
		})
	}
}

func TestFindCoupling(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filename string
		coupling float64
	}{
		{filename: "Ground/Ising1d_40_1_1.wf", coupling: 1},
		{filename: "Unitary/Ising1d_40_0.5_2.wf", coupling: 0.5},
		{filename: "Heisenberg2d_100_2_1.wf", coupling: 2},
	}
	for _, test := range tests {
		t.Run(test.filename, func(t *testing.T) {
			t.Parallel()
			coupling, err := findCoupling(test.filename)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if coupling != test.coupling {
				t.Fatalf("%f, expected %f", coupling, test.coupling)
			}
		})
	}
}

func TestFindCouplingInvalid(t *testing.T) {
	t.Parallel()
	tests := []string{
		"Ising1d.wf",
		"Ising1d_40.wf",
		"Ising1d_40_1.wf",
		"Ising1d_40_x_1.wf",
	}
	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			t.Parallel()
			if _, err := findCoupling(filename); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

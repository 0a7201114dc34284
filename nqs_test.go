package nqs

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"testing"
)

// testMachine returns a small deterministic machine of nv visible and nh
// hidden units.
func testMachine(nv, nh int) *Machine {
	a := make([]complex128, nv)
	for v := range a {
		a[v] = complex(0.1*float64(v+1), -0.05*float64(v))
	}
	b := make([]complex128, nh)
	for h := range b {
		b[h] = complex(-0.07*float64(h), 0.11*float64(h+1))
	}
	w := make([][]complex128, nv)
	for v := range w {
		w[v] = make([]complex128, nh)
		for h := range w[v] {
			w[v][h] = complex(0.03*float64(v-h), 0.02*float64(v+h)-0.05)
		}
	}
	m, err := New(a, b, w)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return m
}

func applyFlips(state, flips []int) []int {
	flipped := make([]int, len(state))
	copy(flipped, state)
	for _, f := range flips {
		flipped[f] *= -1
	}
	return flipped
}

func TestLogAmplitudeRatio(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state []int
		flips []int
	}{
		{state: []int{1, -1, 1, -1}, flips: []int{0}},
		{state: []int{1, -1, 1, -1}, flips: []int{3}},
		{state: []int{1, -1, 1, -1}, flips: []int{1, 2}},
		{state: []int{-1, -1, -1, -1}, flips: []int{0, 3}},
		{state: []int{1, 1, 1, 1}, flips: []int{2}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v %v", test.state, test.flips), func(t *testing.T) {
			t.Parallel()
			m := testMachine(len(test.state), 6)
			m.InitLt(test.state)

			ratio := m.LogAmplitudeRatio(test.state, test.flips)
			flipped := applyFlips(test.state, test.flips)
			full := m.LogAmplitude(flipped) - m.LogAmplitude(test.state)

			if cmplx.Abs(ratio-full) > 1e-10 {
				t.Fatalf("%v, expected %v", ratio, full)
			}
		})
	}
}

func TestLogAmplitudeRatioEmpty(t *testing.T) {
	t.Parallel()
	m := testMachine(4, 6)
	state := []int{1, -1, -1, 1}
	m.InitLt(state)
	if ratio := m.LogAmplitudeRatio(state, nil); ratio != 0 {
		t.Fatalf("%v", ratio)
	}
	if ratio := m.AmplitudeRatio(state, nil); ratio != 1 {
		t.Fatalf("%v", ratio)
	}
}

func TestUpdateLt(t *testing.T) {
	t.Parallel()
	m := testMachine(6, 8)
	state := []int{1, -1, 1, 1, -1, -1}
	m.InitLt(state)

	// Apply a sequence of flips, updating the table incrementally.
	flipSets := [][]int{{0}, {2, 4}, {5}, {1, 3}}
	for _, flips := range flipSets {
		m.UpdateLt(state, flips)
		state = applyFlips(state, flips)
	}

	// The incrementally updated table must equal a fresh initialization
	// from the resulting configuration.
	fresh := testMachine(6, 8)
	fresh.InitLt(state)
	for h := range m.lt {
		if cmplx.Abs(m.lt[h]-fresh.lt[h]) > 1e-10 {
			t.Fatalf("%d %v, expected %v", h, m.lt[h], fresh.lt[h])
		}
	}
}

func TestDoubleFlipRoundTrip(t *testing.T) {
	t.Parallel()
	m := testMachine(5, 7)
	state := []int{1, 1, -1, 1, -1}
	m.InitLt(state)
	lt0 := make([]complex128, len(m.lt))
	copy(lt0, m.lt)

	flips := []int{1, 4}
	m.UpdateLt(state, flips)
	state = applyFlips(state, flips)
	m.UpdateLt(state, flips)
	state = applyFlips(state, flips)

	if fmt.Sprintf("%v", state) != "[1 1 -1 1 -1]" {
		t.Fatalf("%v", state)
	}
	for h := range m.lt {
		if cmplx.Abs(m.lt[h]-lt0[h]) > 1e-12 {
			t.Fatalf("%d %v, expected %v", h, m.lt[h], lt0[h])
		}
	}
}

func TestLncoshReal(t *testing.T) {
	t.Parallel()

	// Continuous and monotonically increasing for positive arguments.
	prev := math.Inf(-1)
	for x := 0.0; x < 20; x += 0.01 {
		y := lncoshReal(x)
		if y < prev {
			t.Fatalf("%f %f %f", x, y, prev)
		}
		prev = y
	}

	// The direct and asymptotic forms agree around the cutoff.
	direct := math.Log(math.Cosh(11.9))
	asymptotic := 12.1 - math.Log(2)
	if math.Abs(lncoshReal(11.9)-direct) > 1e-12 {
		t.Fatalf("%f %f", lncoshReal(11.9), direct)
	}
	if math.Abs(lncoshReal(12.1)-asymptotic) > 1e-9 {
		t.Fatalf("%f %f", lncoshReal(12.1), asymptotic)
	}
	// Crossing the cutoff is smooth.
	if math.Abs(lncoshReal(12.1)-lncoshReal(11.9)-0.2) > 1e-3 {
		t.Fatalf("%f %f", lncoshReal(12.1), lncoshReal(11.9))
	}

	// Symmetric in x.
	if lncoshReal(-3.7) != lncoshReal(3.7) {
		t.Fatalf("%f %f", lncoshReal(-3.7), lncoshReal(3.7))
	}
}

func TestLncoshComplex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		z complex128
	}{
		{z: 0.3 + 0.7i},
		{z: -1.2 + 0.4i},
		{z: 2.5 - 1.1i},
		{z: -0.8 - 2.3i},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.z), func(t *testing.T) {
			t.Parallel()
			got := lncosh(test.z)
			expected := cmplx.Log(cmplx.Cosh(test.z))
			if cmplx.Abs(got-expected) > 1e-12 {
				t.Fatalf("%v, expected %v", got, expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	input := `2 3
(0.1-0.2i) (0.3+0.4i)
(0.5+0i) (0.6+0i) (-0.7+0i)
(1+1i) (2+2i) (3+3i)
(4+4i) (5+5i) (6+6i)
`
	m, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if m.Nspins() != 2 || m.NHidden() != 3 {
		t.Fatalf("%d %d", m.Nspins(), m.NHidden())
	}
	if m.a[0] != 0.1-0.2i || m.a[1] != 0.3+0.4i {
		t.Fatalf("%v", m.a)
	}
	if m.b[2] != -0.7 {
		t.Fatalf("%v", m.b)
	}
	if m.w[1][2] != 6+6i {
		t.Fatalf("%v", m.w)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
	}{
		// Empty.
		{input: ""},
		// Negative unit counts.
		{input: "-1 3"},
		// Truncated weights.
		{input: "2 2 (1+0i) (1+0i) (1+0i) (1+0i) (1+0i)"},
		// Malformed complex value.
		{input: "1 1 (1+0i) abc (1+0i)"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(strings.NewReader(test.input)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

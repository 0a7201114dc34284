// Package nqs implements neural-network quantum state wavefunctions.
//
// A neural-network quantum state is a variational ansatz with the structure
// of a restricted Boltzmann machine, mapping a configuration of N spins to a
// complex amplitude.
//
// References:
//   - Solving the quantum many-body problem with artificial neural networks, Giuseppe Carleo and Matthias Troyer
package nqs

import (
	"bufio"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var log2 = math.Log(2)

// Machine is a restricted Boltzmann machine wavefunction.
// Its parameters are immutable after construction.
// The look-up table of hidden unit effective fields is the only mutable
// state, so independent Markov chains over the same parameters must each own
// their own Machine.
type Machine struct {
	// a is the visible bias.
	a []complex128
	// b is the hidden bias.
	b []complex128
	// w[v][h] is the weight between visible unit v and hidden unit h.
	w [][]complex128

	// lt[h] is the effective field b[h] + sum_v state[v]*w[v][h] of the
	// current configuration.
	lt []complex128
}

// New creates a Machine with visible bias a, hidden bias b, and weights w.
func New(a, b []complex128, w [][]complex128) (*Machine, error) {
	if len(w) != len(a) {
		return nil, errors.Errorf("%d %d", len(w), len(a))
	}
	for i, row := range w {
		if len(row) != len(b) {
			return nil, errors.Errorf("%d %d %d", i, len(row), len(b))
		}
	}
	m := &Machine{a: a, b: b, w: w, lt: make([]complex128, len(b))}
	return m, nil
}

// Load reads wavefunction parameters from a whitespace separated stream of
// the visible unit count, the hidden unit count, the visible bias, the
// hidden bias, and the weights in visible-major order.
// Complex values are in the form accepted by strconv.ParseComplex.
func Load(r io.Reader) (*Machine, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	nv, err := scanInt(sc)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	nh, err := scanInt(sc)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if nv <= 0 || nh <= 0 {
		return nil, errors.Errorf("%d %d", nv, nh)
	}

	a := make([]complex128, nv)
	for i := range a {
		if a[i], err = scanComplex(sc); err != nil {
			return nil, errors.Wrap(err, strconv.Itoa(i))
		}
	}
	b := make([]complex128, nh)
	for j := range b {
		if b[j], err = scanComplex(sc); err != nil {
			return nil, errors.Wrap(err, strconv.Itoa(j))
		}
	}
	w := make([][]complex128, nv)
	for i := range w {
		w[i] = make([]complex128, nh)
		for j := range w[i] {
			if w[i][j], err = scanComplex(sc); err != nil {
				return nil, errors.Wrap(err, strconv.Itoa(i*nh+j))
			}
		}
	}

	return New(a, b, w)
}

// LoadFile reads wavefunction parameters from the file at fpath.
func LoadFile(fpath string) (*Machine, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return m, nil
}

// Nspins returns the number of spins, which equals the number of visible
// units.
func (m *Machine) Nspins() int {
	return len(m.a)
}

// NHidden returns the number of hidden units.
func (m *Machine) NHidden() int {
	return len(m.b)
}

// LogAmplitude computes the logarithm of the wavefunction amplitude of
// state.
// It recomputes every hidden unit field and is O(Nv*Nh); use
// LogAmplitudeRatio on the sampling hot path instead.
// The branch of the complex logarithm is not tracked across evaluations, so
// values may differ by multiples of 2*pi*i.
func (m *Machine) LogAmplitude(state []int) complex128 {
	var rbm complex128
	for v, av := range m.a {
		rbm += av * complex(float64(state[v]), 0)
	}
	for h, bh := range m.b {
		theta := bh
		for v, sv := range state {
			theta += complex(float64(sv), 0) * m.w[v][h]
		}
		rbm += lncosh(theta)
	}
	return rbm
}

// LogAmplitudeRatio computes the log of the ratio between the amplitude of
// the state with the spins at flips reversed, and the amplitude of state
// itself.
// It uses the look-up table and is O(Nh*len(flips)).
func (m *Machine) LogAmplitudeRatio(state, flips []int) complex128 {
	if len(flips) == 0 {
		return 0
	}

	var logpop complex128

	// Change due to the visible bias.
	for _, flip := range flips {
		logpop -= m.a[flip] * complex(2*float64(state[flip]), 0)
	}

	// Change due to the interaction weights.
	for h := range m.b {
		theta := m.lt[h]
		thetap := theta
		for _, flip := range flips {
			thetap -= complex(2*float64(state[flip]), 0) * m.w[flip][h]
		}
		logpop += lncosh(thetap) - lncosh(theta)
	}

	return logpop
}

// AmplitudeRatio computes the ratio between the amplitude of the state with
// the spins at flips reversed, and the amplitude of state itself.
func (m *Machine) AmplitudeRatio(state, flips []int) complex128 {
	return cmplx.Exp(m.LogAmplitudeRatio(state, flips))
}

// InitLt initializes the look-up table from state.
// It must be called before any LogAmplitudeRatio or UpdateLt call on a
// freshly initialized chain.
func (m *Machine) InitLt(state []int) {
	for h, bh := range m.b {
		theta := bh
		for v, sv := range state {
			theta += complex(float64(sv), 0) * m.w[v][h]
		}
		m.lt[h] = theta
	}
}

// UpdateLt updates the look-up table for the spin flips at flips.
// state is the configuration before the flips are applied.
func (m *Machine) UpdateLt(state, flips []int) {
	if len(flips) == 0 {
		return
	}
	for h := range m.lt {
		for _, flip := range flips {
			m.lt[h] -= complex(2*float64(state[flip]), 0) * m.w[flip][h]
		}
	}
}

// lncoshReal computes ln(cosh(x)) for real x.
// For large x the asymptotic expansion is used to avoid overflowing cosh.
// The error of the expansion is O(exp(-2|x|)), which is below double
// precision beyond the cutoff.
func lncoshReal(x float64) float64 {
	xp := math.Abs(x)
	if xp <= 12 {
		return math.Log(math.Cosh(xp))
	}
	return xp - log2
}

// lncosh computes ln(cosh(z)) for complex z.
// The modulus comes from the real argument form, and the phase from
// log(cos(y) + i*tanh(x)*sin(y)).
func lncosh(z complex128) complex128 {
	xr := real(z)
	xi := imag(z)

	res := complex(lncoshReal(xr), 0)
	res += cmplx.Log(complex(math.Cos(xi), math.Tanh(xr)*math.Sin(xi)))
	return res
}

func scanInt(sc *bufio.Scanner) (int, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, errors.Wrap(err, "")
		}
		return 0, errors.Wrap(io.ErrUnexpectedEOF, "")
	}
	n, err := strconv.Atoi(sc.Text())
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return n, nil
}

func scanComplex(sc *bufio.Scanner) (complex128, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, errors.Wrap(err, "")
		}
		return 0, errors.Wrap(io.ErrUnexpectedEOF, "")
	}
	v, err := strconv.ParseComplex(sc.Text(), 128)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return v, nil
}

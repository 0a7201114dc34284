// Package exactdiag computes exact properties of small spin systems by
// enumerating the full 2^N dimensional basis.
//
// It serves as an independent reference for results obtained by Monte Carlo
// sampling, and is only practical for systems of around 20 spins or less.
package exactdiag

import (
	"math"
	"math/cmplx"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/nqs/hamiltonian"
)

// ConnFinder enumerates the non-zero matrix elements on a configuration.
type ConnFinder interface {
	FindConn(conns []hamiltonian.Conn, state []int) []hamiltonian.Conn
}

// Wavefunction evaluates log amplitudes of spin configurations.
type Wavefunction interface {
	LogAmplitude(state []int) complex128
}

// Dense assembles the full Hamiltonian matrix of a system of nspins spins
// in the spin-z basis.
func Dense(h ConnFinder, nspins int) *tensor.Dense {
	dim := 1 << nspins
	m := tensor.Zeros(dim, dim)

	conns := make([]hamiltonian.Conn, 0)
	flipped := make([]int, nspins)
	for i, state := range states(nspins) {
		conns = h.FindConn(conns, state)
		for _, c := range conns {
			copy(flipped, state)
			for _, f := range c.Flips {
				flipped[f] *= -1
			}
			j := stateIndex(flipped)
			m.SetAt([]int{j, i}, m.At(j, i)+complex64(c.Mel))
		}
	}
	return m
}

// Ground returns the lowest eigenvalue of h.
func Ground(h *tensor.Dense) (complex64, error) {
	eigvals, eigvecs := tensor.Zeros(1), tensor.Zeros(1)
	var bufs [7]*tensor.Dense
	for i := range bufs {
		bufs[i] = tensor.Zeros(1)
	}
	if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, bufs); err != nil {
		return 0, errors.Wrap(err, "")
	}
	return eigvals.At(0), nil
}

// Spectrum returns all eigenvalues of h in ascending order.
func Spectrum(t *tensor.Dense) []float64 {
	dim := t.Shape()[0]
	gnm := mat.NewDense(dim, dim, nil)
	for i := range dim {
		for j := range dim {
			v := t.At(i, j)
			if imag(v) != 0 {
				panic("not real")
			}
			gnm.Set(i, j, float64(real(v)))
		}
	}

	var eig mat.Eigen
	ok := eig.Factorize(gnm, mat.EigenNone)
	if !ok {
		panic("eig.Factorize failed")
	}

	vals := eig.Values(nil)
	res := make([]float64, 0, len(vals))
	for _, v := range vals {
		res = append(res, real(v))
	}
	slices.Sort(res)
	return res
}

// VariationalEnergy computes the exact expectation value of h in the state
// described by wf, by summing over all configurations.
// If mag0 is true, the sum is restricted to the zero magnetization sector.
func VariationalEnergy(wf Wavefunction, h ConnFinder, nspins int, mag0 bool) complex128 {
	conns := make([]hamiltonian.Conn, 0)
	flipped := make([]int, nspins)

	var esum complex128
	var wsum float64
	for _, state := range states(nspins) {
		if mag0 {
			magt := 0
			for _, spin := range state {
				magt += spin
			}
			if magt != 0 {
				continue
			}
		}

		logpsi := wf.LogAmplitude(state)
		weight := math.Exp(2 * real(logpsi))

		var eloc complex128
		conns = h.FindConn(conns, state)
		for _, c := range conns {
			copy(flipped, state)
			for _, f := range c.Flips {
				flipped[f] *= -1
			}
			eloc += cmplx.Exp(wf.LogAmplitude(flipped)-logpsi) * c.Mel
		}

		esum += complex(weight, 0) * eloc
		wsum += weight
	}
	return esum / complex(wsum, 0)
}

// states iterates over all configurations of n spins.
// The yielded state is a reusable buffer valid only within an iteration.
func states(n int) func(yield func(int, []int) bool) {
	state := make([]int, n)
	return func(yield func(int, []int) bool) {
		for i := range 1 << n {
			indexState(state, n, i)
			if !yield(i, state) {
				return
			}
		}
	}
}

// indexState decodes basis index i into a spin configuration, with site 0
// at the most significant bit and a zero bit meaning spin up.
func indexState(state []int, n, i int) {
	for v := range n {
		if i>>(n-1-v)&1 == 0 {
			state[v] = 1
		} else {
			state[v] = -1
		}
	}
}

// stateIndex is the inverse of indexState.
func stateIndex(state []int) int {
	n := len(state)
	idx := 0
	for v, spin := range state {
		if spin < 0 {
			idx |= 1 << (n - 1 - v)
		}
	}
	return idx
}

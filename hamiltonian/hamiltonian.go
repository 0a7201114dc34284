// Package hamiltonian implements spin Hamiltonians on 1D chains and the 2D
// square lattice.
//
// A Hamiltonian enumerates, for a given spin configuration, all
// configurations connected to it by a non-zero matrix element.
// A connected configuration is encoded as the set of spins whose sign
// differs from the given configuration.
package hamiltonian

import (
	"math"

	"github.com/pkg/errors"
)

// Conn is a non-zero matrix element between a configuration and the
// configuration obtained by reversing the spins at Flips.
// An empty Flips denotes the diagonal element.
type Conn struct {
	Flips []int
	Mel   complex128
}

// Ising1D is the transverse-field Ising model in one dimension.
type Ising1D struct {
	nspins int
	hfield float64
	pbc    bool

	// offdiag are the precomputed single spin flip entries, whose matrix
	// elements are the site independent -hfield.
	offdiag []Conn
}

// NewIsing1D creates a transverse-field Ising chain of nspins spins with
// transverse field hfield.
func NewIsing1D(nspins int, hfield float64, pbc bool) (*Ising1D, error) {
	if nspins < 2 {
		return nil, errors.Errorf("%d", nspins)
	}
	h := &Ising1D{nspins: nspins, hfield: hfield, pbc: pbc}
	h.offdiag = make([]Conn, nspins)
	for i := range h.offdiag {
		h.offdiag[i] = Conn{Flips: []int{i}, Mel: complex(-hfield, 0)}
	}
	return h, nil
}

// FindConn appends to conns all configurations connected to state, starting
// with the diagonal element.
// conns is a reusable buffer whose contents are overwritten.
func (h *Ising1D) FindConn(conns []Conn, state []int) []Conn {
	conns = conns[:0]

	// Interaction part Sz*Sz.
	var diag float64
	for i := 0; i < h.nspins-1; i++ {
		diag -= float64(state[i] * state[i+1])
	}
	if h.pbc {
		diag -= float64(state[h.nspins-1] * state[0])
	}
	conns = append(conns, Conn{Mel: complex(diag, 0)})

	// Transverse field part, a single spin flip on every site.
	conns = append(conns, h.offdiag...)
	return conns
}

// MinFlips returns the number of spin flips connecting configurations of
// non-zero weight.
func (h *Ising1D) MinFlips() int {
	return 1
}

// Heisenberg1D is the antiferromagnetic Heisenberg model in one dimension.
type Heisenberg1D struct {
	nspins int
	jz     float64
	pbc    bool
}

// NewHeisenberg1D creates a Heisenberg chain of nspins spins with coupling
// jz.
func NewHeisenberg1D(nspins int, jz float64, pbc bool) (*Heisenberg1D, error) {
	if nspins < 2 {
		return nil, errors.Errorf("%d", nspins)
	}
	return &Heisenberg1D{nspins: nspins, jz: jz, pbc: pbc}, nil
}

// FindConn appends to conns all configurations connected to state, starting
// with the diagonal element.
// Off-diagonal entries are the exchange terms on bonds with antiparallel
// spins.
func (h *Heisenberg1D) FindConn(conns []Conn, state []int) []Conn {
	conns = conns[:0]

	var diag float64
	for i := 0; i < h.nspins-1; i++ {
		diag += float64(state[i] * state[i+1])
	}
	if h.pbc {
		diag += float64(state[h.nspins-1] * state[0])
	}
	conns = append(conns, Conn{Mel: complex(h.jz*diag, 0)})

	for i := 0; i < h.nspins-1; i++ {
		if state[i] != state[i+1] {
			conns = append(conns, Conn{Flips: []int{i, i + 1}, Mel: -2})
		}
	}
	if h.pbc && state[h.nspins-1] != state[0] {
		conns = append(conns, Conn{Flips: []int{h.nspins - 1, 0}, Mel: -2})
	}
	return conns
}

// MinFlips returns the number of spin flips connecting configurations of
// non-zero weight.
// The exchange terms flip two spins at a time.
func (h *Heisenberg1D) MinFlips() int {
	return 2
}

// Heisenberg2D is the antiferromagnetic Heisenberg model on the square
// lattice.
type Heisenberg2D struct {
	nspins int
	// l is the side of the square lattice.
	l   int
	jz  float64
	pbc bool

	// bonds are the deduplicated nearest neighbor pairs, lower index first.
	bonds [][2]int
}

// NewHeisenberg2D creates a Heisenberg model on a square lattice of nspins
// spins with coupling jz.
// nspins must be a perfect square.
func NewHeisenberg2D(nspins int, jz float64, pbc bool) (*Heisenberg2D, error) {
	l := int(math.Sqrt(float64(nspins)))
	if l*l != nspins {
		return nil, errors.Errorf("%d is not a square lattice", nspins)
	}
	h := &Heisenberg2D{nspins: nspins, l: l, jz: jz, pbc: pbc}

	// nn[i] are the left, right, up, down neighbors of site i, with -1
	// marking a missing neighbor at an open boundary.
	nn := make([][4]int, nspins)
	for i := range nn {
		nn[i][0] = h.horizontal(i-1, i)
		nn[i][1] = h.horizontal(i+1, i)
		nn[i][2] = h.vertical(i - l)
		nn[i][3] = h.vertical(i + l)
	}

	for i := range nn {
		for _, j := range nn[i] {
			if i < j {
				h.bonds = append(h.bonds, [2]int{i, j})
			}
		}
	}
	return h, nil
}

// FindConn appends to conns all configurations connected to state, starting
// with the diagonal element.
func (h *Heisenberg2D) FindConn(conns []Conn, state []int) []Conn {
	conns = conns[:0]

	var diag float64
	for _, b := range h.bonds {
		diag += float64(state[b[0]] * state[b[1]])
	}
	conns = append(conns, Conn{Mel: complex(h.jz*diag, 0)})

	for _, b := range h.bonds {
		if state[b[0]] != state[b[1]] {
			conns = append(conns, Conn{Flips: []int{b[0], b[1]}, Mel: -2})
		}
	}
	return conns
}

// MinFlips returns the number of spin flips connecting configurations of
// non-zero weight.
func (h *Heisenberg2D) MinFlips() int {
	return 2
}

// Bonds returns the nearest neighbor bonds of the lattice.
func (h *Heisenberg2D) Bonds() [][2]int {
	return h.bonds
}

// horizontal resolves the horizontal neighbor nn of site s across the row
// boundary.
func (h *Heisenberg2D) horizontal(nn, s int) int {
	switch {
	case s%h.l == 0 && nn == s-1:
		if h.pbc {
			return s + h.l - 1
		}
		return -1
	case (s+1)%h.l == 0 && nn == s+1:
		if h.pbc {
			return s - h.l + 1
		}
		return -1
	default:
		return nn
	}
}

// vertical resolves the vertical neighbor nn across the column boundary.
func (h *Heisenberg2D) vertical(nn int) int {
	switch {
	case nn >= h.nspins:
		if h.pbc {
			return nn - h.nspins
		}
		return -1
	case nn < 0:
		if h.pbc {
			return h.nspins + nn
		}
		return -1
	default:
		return nn
	}
}

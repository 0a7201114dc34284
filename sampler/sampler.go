// Package sampler implements Metropolis-Hastings Monte Carlo sampling of
// spin wavefunctions.
//
// The sampler draws a Markov chain of spin configurations distributed
// according to the squared modulus of the wavefunction amplitude, and
// records the local energy of a Hamiltonian once per sweep.
//
// References:
//   - Solving the quantum many-body problem with artificial neural networks, Giuseppe Carleo and Matthias Troyer
package sampler

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/nqs/hamiltonian"
)

// Wavefunction is a variational wavefunction with incrementally updatable
// amplitude ratios.
type Wavefunction interface {
	// Nspins returns the number of spins.
	Nspins() int
	// AmplitudeRatio returns the ratio between the amplitude of the state
	// with the spins at flips reversed and the amplitude of state.
	AmplitudeRatio(state, flips []int) complex128
	// InitLt initializes the internal look-up tables from state.
	InitLt(state []int)
	// UpdateLt updates the look-up tables for the flips at flips, given
	// the pre-flip state.
	UpdateLt(state, flips []int)
}

// Hamiltonian enumerates the non-zero matrix elements on a configuration.
type Hamiltonian interface {
	FindConn(conns []hamiltonian.Conn, state []int) []hamiltonian.Conn
	MinFlips() int
}

// Progress observes the advance of a sampling phase.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// Sampler samples a wavefunction with the Metropolis-Hastings algorithm.
// A Sampler owns its configuration, random source, and the wavefunction's
// look-up tables, and must not be shared between goroutines.
type Sampler struct {
	wf Wavefunction
	h  Hamiltonian

	nspins int
	state  []int

	rnd *rand.Rand

	// Sampling statistics.
	accept int
	nmoves int

	// flips is a reusable buffer of proposed spin flips.
	flips []int
	// conns is a reusable buffer of Hamiltonian matrix elements.
	conns []hamiltonian.Conn

	energies []complex128
}

// New creates a Sampler over the wavefunction wf and Hamiltonian h.
// A negative seed derives the seed from the wall clock.
func New(wf Wavefunction, h Hamiltonian, seed int64) *Sampler {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	s := &Sampler{
		wf:     wf,
		h:      h,
		nspins: wf.Nspins(),
		rnd:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}
	s.state = make([]int, s.nspins)
	s.flips = make([]int, 2)
	return s
}

// InitRandomState draws a uniformly random configuration.
// If mag0 is true, the configuration is constrained to zero total
// magnetization, which requires an even number of spins.
func (s *Sampler) InitRandomState(mag0 bool) error {
	for i := range s.state {
		if s.rnd.Float64() < 0.5 {
			s.state[i] = -1
		} else {
			s.state[i] = 1
		}
	}

	if !mag0 {
		return nil
	}
	if s.nspins%2 != 0 {
		return errors.Errorf("zero magnetization needs an even number of spins, got %d", s.nspins)
	}
	for {
		magt := 0
		for _, spin := range s.state {
			magt += spin
		}
		switch {
		case magt > 0:
			rs := s.rnd.IntN(s.nspins)
			for s.state[rs] < 0 {
				rs = s.rnd.IntN(s.nspins)
			}
			s.state[rs] = -1
		case magt < 0:
			rs := s.rnd.IntN(s.nspins)
			for s.state[rs] > 0 {
				rs = s.rnd.IntN(s.nspins)
			}
			s.state[rs] = 1
		default:
			return nil
		}
	}
}

// randSpin draws nflips random spins to be flipped into s.flips.
// It reports whether the proposal is valid.
// For two spin flips with mag0, only proposals preserving the total
// magnetization are valid.
func (s *Sampler) randSpin(nflips int, mag0 bool) bool {
	s.flips = s.flips[:nflips]
	s.flips[0] = s.rnd.IntN(s.nspins)
	if nflips == 2 {
		s.flips[1] = s.rnd.IntN(s.nspins)
		if !mag0 {
			return s.flips[1] != s.flips[0]
		}
		return s.state[s.flips[1]] != s.state[s.flips[0]]
	}
	return true
}

// Move proposes nflips random spin flips and accepts them with the
// Metropolis probability min(1, |ratio|^2).
func (s *Sampler) Move(nflips int, mag0 bool) {
	if s.randSpin(nflips, mag0) {
		ratio := s.wf.AmplitudeRatio(s.state, s.flips)
		acceptance := math.Min(1, real(ratio)*real(ratio)+imag(ratio)*imag(ratio))

		if s.rnd.Float64() < acceptance {
			// The look-up tables must see the pre-flip state.
			s.wf.UpdateLt(s.state, s.flips)
			for _, flip := range s.flips {
				s.state[flip] *= -1
			}
			s.accept++
		}
	}
	s.nmoves++
}

// ResetAv resets the acceptance statistics.
func (s *Sampler) ResetAv() {
	s.accept = 0
	s.nmoves = 0
}

// Acceptance returns the fraction of accepted moves.
func (s *Sampler) Acceptance() float64 {
	return float64(s.accept) / float64(s.nmoves)
}

// MeasureEnergy records the local energy of the current configuration.
// The local energy is the sum of the amplitude ratios towards all connected
// configurations weighted by their matrix elements.
func (s *Sampler) MeasureEnergy() {
	s.conns = s.h.FindConn(s.conns, s.state)

	var en complex128
	for _, c := range s.conns {
		en += s.wf.AmplitudeRatio(s.state, c.Flips) * c.Mel
	}
	s.energies = append(s.energies, en)
}

// Energies returns the local energy samples recorded so far, one per
// measurement sweep.
func (s *Sampler) Energies() []complex128 {
	return s.energies
}

// State returns the current configuration.
func (s *Sampler) State() []int {
	return s.state
}

// RunOptions are options for the Monte Carlo run.
type RunOptions struct {
	thermfactor float64
	sweepfactor int
	nflips      int
	mag0        bool
	states      io.Writer
	progress    Progress
}

// NewRunOptions returns the default run options.
func NewRunOptions() RunOptions {
	opt := RunOptions{}
	opt.thermfactor = 0.1
	opt.sweepfactor = 1
	opt.nflips = -1
	opt.mag0 = true
	return opt
}

// ThermFactor sets the fraction of sweeps discarded during the initial
// equilibration.
func (opt RunOptions) ThermFactor(f float64) RunOptions {
	opt.thermfactor = f
	return opt
}

// SweepFactor sets the number of moves per sweep to nspins times f.
func (opt RunOptions) SweepFactor(f int) RunOptions {
	opt.sweepfactor = f
	return opt
}

// Nflips sets the number of spins flipped per move.
// The default is the Hamiltonian's MinFlips.
func (opt RunOptions) Nflips(n int) RunOptions {
	opt.nflips = n
	return opt
}

// Mag0 sets whether sampling is constrained to the zero magnetization
// sector.
func (opt RunOptions) Mag0(mag0 bool) RunOptions {
	opt.mag0 = mag0
	return opt
}

// States sets a sink receiving the sampled configuration once per
// measurement sweep.
func (opt RunOptions) States(w io.Writer) RunOptions {
	opt.states = w
	return opt
}

// Progress sets the observer of the sampling progress.
func (opt RunOptions) Progress(p Progress) RunOptions {
	opt.progress = p
	return opt
}

// Run performs the Monte Carlo sampling consisting of nsweeps sweeps.
// The chain is first initialized to a random configuration and thermalized.
// Afterwards, one local energy sample is recorded per sweep.
func (s *Sampler) Run(nsweeps int, options ...RunOptions) error {
	opt := NewRunOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	nflips := opt.nflips
	if nflips == -1 {
		nflips = s.h.MinFlips()
	}
	if nflips < 1 || nflips > 2 {
		return errors.Errorf("number of spin flips should be 1 or 2, got %d", nflips)
	}
	if opt.thermfactor < 0 || opt.thermfactor > 1 {
		return errors.Errorf("thermalization factor should be between 0 and 1, got %f", opt.thermfactor)
	}
	if nsweeps < 50 {
		return errors.Errorf("number of sweeps should be at least 50, got %d", nsweeps)
	}

	if err := s.InitRandomState(opt.mag0); err != nil {
		return errors.Wrap(err, "")
	}
	s.wf.InitLt(s.state)
	s.energies = s.energies[:0]
	s.ResetAv()

	// Thermalization.
	ntherm := int(float64(nsweeps) * opt.thermfactor)
	if opt.progress != nil {
		opt.progress.Start(ntherm)
	}
	for n := 0; n < ntherm; n++ {
		for i := 0; i < s.nspins*opt.sweepfactor; i++ {
			s.Move(nflips, opt.mag0)
		}
		if opt.progress != nil {
			opt.progress.Increment()
		}
	}
	if opt.progress != nil {
		opt.progress.Finish()
	}

	s.ResetAv()

	// Measurement sweeps.
	if opt.progress != nil {
		opt.progress.Start(nsweeps)
	}
	for n := 0; n < nsweeps; n++ {
		for i := 0; i < s.nspins*opt.sweepfactor; i++ {
			s.Move(nflips, opt.mag0)
		}
		if opt.states != nil {
			if err := s.writeState(opt.states); err != nil {
				return errors.Wrap(err, "")
			}
		}
		s.MeasureEnergy()
		if opt.progress != nil {
			opt.progress.Increment()
		}
	}
	if opt.progress != nil {
		opt.progress.Finish()
	}

	return nil
}

// writeState writes the current configuration as fixed width integers on a
// single line.
func (s *Sampler) writeState(w io.Writer) error {
	for _, spin := range s.state {
		if _, err := fmt.Fprintf(w, "%2d ", spin); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

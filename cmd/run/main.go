// Command run samples a pre-trained neural-network quantum state and
// estimates the energy per spin of its Hamiltonian.
//
// The Hamiltonian variant and its coupling constant are read off the
// parameter filename: the token "Ising", "Heisenberg1d", or "Heisenberg2d"
// selects the model, and the segment between the second and third
// underscore is the coupling.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"

	"github.com/fumin/nqs"
	"github.com/fumin/nqs/blocking"
	"github.com/fumin/nqs/hamiltonian"
	"github.com/fumin/nqs/runs"
	"github.com/fumin/nqs/sampler"
)

var (
	filename   = flag.String("filename", "", "file containing the wavefunction parameters")
	nsweeps    = flag.Float64("nsweeps", 1.0e4, "number of Monte Carlo sweeps")
	seed       = flag.Int64("seed", -1, "seed for pseudo-random numbers, negative values use the wall clock")
	filestates = flag.String("filestates", "", "file to print sampled configurations to")
	dbPath     = flag.String("db", "", "sqlite database collecting run summaries")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if *filename == "" {
		return errors.Errorf("option -filename must be specified")
	}
	model := findModel(*filename)
	if model == "" {
		return errors.Errorf("cannot determine the model from filename %q", *filename)
	}
	coupling, err := findCoupling(*filename)
	if err != nil {
		return errors.Wrap(err, "")
	}

	m, err := nqs.LoadFile(*filename)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("loaded wavefunction from %s, N_visible = %d, N_hidden = %d", *filename, m.Nspins(), m.NHidden())

	h, err := newHamiltonian(model, m.Nspins(), coupling)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("using the %s model with coupling %f", model, coupling)

	s := sampler.New(m, h, *seed)
	opt := sampler.NewRunOptions().Progress(&pbProgress{})

	var statesF *os.File
	if *filestates != "" {
		statesF, err = os.Create(*filestates)
		if err != nil {
			return errors.Wrap(err, "")
		}
		opt = opt.States(statesF)
		log.Printf("saving sampled configurations to %s", *filestates)
	}

	err = s.Run(int(*nsweeps), opt)
	if statesF != nil {
		if err1 := statesF.Close(); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
		}
	}
	if err != nil {
		return errors.Wrap(err, "")
	}

	stats, err := blocking.Analyze(s.Energies(), m.Nspins())
	if err != nil {
		return errors.Wrap(err, "")
	}
	printStatistics(stats, s.Acceptance())

	if *dbPath != "" {
		if err := record(model, coupling, m.Nspins(), s.Acceptance(), stats); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func newHamiltonian(model string, nspins int, coupling float64) (sampler.Hamiltonian, error) {
	switch model {
	case "Ising1d":
		return hamiltonian.NewIsing1D(nspins, coupling, true)
	case "Heisenberg1d":
		return hamiltonian.NewHeisenberg1D(nspins, coupling, true)
	case "Heisenberg2d":
		return hamiltonian.NewHeisenberg2D(nspins, coupling, true)
	default:
		return nil, errors.Errorf("%q", model)
	}
}

func printStatistics(stats blocking.Statistics, acceptance float64) {
	// Print the energy with as many digits as the error resolves.
	ndigits := int(math.Log10(stats.StdErr))
	if ndigits < 0 {
		ndigits = -ndigits + 2
	} else {
		ndigits = 0
	}

	fmt.Printf("# Estimated average energy per spin :\n")
	fmt.Printf("# %.*e +/- %.0e\n", ndigits, stats.Energy, stats.StdErr)
	fmt.Printf("# Error estimated with binning analysis consisting of %d bins\n", stats.NBlocks)
	fmt.Printf("# Block size is %d\n", stats.BlockSize)
	fmt.Printf("# Estimated autocorrelation time is %.0f\n", stats.AutocorrTime)
	fmt.Printf("# Acceptance rate is %.3f\n", acceptance)
}

func record(model string, coupling float64, nspins int, acceptance float64, stats blocking.Statistics) error {
	store, err := runs.Open(*dbPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer store.Close()

	r := runs.Run{
		Model:        model,
		Coupling:     coupling,
		Nspins:       nspins,
		Nsweeps:      int(*nsweeps),
		Seed:         *seed,
		Energy:       stats.Energy,
		StdErr:       stats.StdErr,
		AutocorrTime: stats.AutocorrTime,
		Acceptance:   acceptance,
	}
	r, err = store.Insert(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("recorded run %s in %s", r.ID, *dbPath)
	return nil
}

// pbProgress reports sampling progress with a console progress bar.
type pbProgress struct {
	bar *pb.ProgressBar
}

func (p *pbProgress) Start(total int) {
	p.bar = pb.StartNew(total)
}

func (p *pbProgress) Increment() {
	p.bar.Increment()
}

func (p *pbProgress) Finish() {
	p.bar.Finish()
}

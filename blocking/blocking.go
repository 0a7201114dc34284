// Package blocking implements binning analysis of correlated Monte Carlo
// samples.
//
// Successive Markov chain samples are serially correlated, so their naive
// variance underestimates the true sampling error.
// Grouping the samples into blocks longer than the correlation length makes
// the block means approximately independent, and the ratio between the
// blocked and unblocked variances estimates twice the integrated
// autocorrelation time.
package blocking

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// nblocks is the number of bins used in the analysis.
const nblocks = 50

// Statistics is the result of a binning analysis of local energy samples.
type Statistics struct {
	// Energy is the estimated mean energy per spin.
	Energy float64
	// StdErr is the estimated standard error per spin.
	StdErr float64
	// AutocorrTime is the estimated integrated autocorrelation time in
	// units of sweeps.
	AutocorrTime float64

	NBlocks   int
	BlockSize int
}

// Analyze performs a binning analysis of the real parts of the energy
// samples for a system of nspins spins.
// Samples beyond NBlocks*BlockSize are discarded.
func Analyze(energies []complex128, nspins int) (Statistics, error) {
	if nspins <= 0 {
		return Statistics{}, errors.Errorf("%d", nspins)
	}
	blocksize := len(energies) / nblocks
	if blocksize == 0 {
		return Statistics{}, errors.Errorf("%d samples for %d blocks", len(energies), nblocks)
	}

	// Unblocked mean and variance over all retained samples, computed with
	// Welford's online algorithm.
	var mean, m2 float64
	blockMeans := make([]float64, nblocks)
	for i := range nblocks {
		var eblock float64
		for j := i * blocksize; j < (i+1)*blocksize; j++ {
			e := real(energies[j])
			eblock += e

			delta := e - mean
			mean += delta / float64(j+1)
			m2 += delta * (e - mean)
		}
		blockMeans[i] = eblock / float64(blocksize)
	}
	unblockedVar := m2 / float64(nblocks*blocksize-1)

	blockMean, blockedVar := stat.MeanVariance(blockMeans, nil)

	stats := Statistics{
		Energy:    blockMean / float64(nspins),
		StdErr:    math.Sqrt(blockedVar/float64(nblocks)) / float64(nspins),
		NBlocks:   nblocks,
		BlockSize: blocksize,
	}
	stats.AutocorrTime = 0.5 * float64(blocksize) * blockedVar / unblockedVar
	return stats, nil
}

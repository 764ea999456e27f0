// This file contains code to help debugging, and is
// separated in from the rest in order not to litter
// the main code with debugging stuff

package main

import (
	"fmt"
	"io"

	"github.com/524D/mzdecon/internal/peakset"
)

func debugSpecInRange(i int, numSpecs int, par params) bool {
	if par.debugSpecs == `` {
		return false
	}
	debugMin, debugMax, _ := parseIntRange(par.debugSpecs, 0, numSpecs)
	return i >= debugMin && i <= debugMax
}

// debugLogPrecursor prints the fitted envelope of a precursor. Measured
// intensities are the ones captured before subtraction.
func debugLogPrecursor(w io.Writer, pr precursorResult, numSpecs int, par params) {
	i := pr.job.specIndex
	if !debugSpecInRange(i, numSpecs, par) {
		return
	}
	fmt.Fprintf(w, "Spectrum:%d ms1:%d selected mz:%f charge:%d\n",
		i, pr.job.ms1Index, pr.job.ion.Mz, pr.job.ion.Charge)
	if !pr.found {
		fmt.Fprintf(w, "  no MS1 peak at selected m/z\n")
		return
	}
	if pr.peak == nil {
		fmt.Fprintf(w, "  no envelope accepted\n")
		return
	}
	dp := pr.peak
	fmt.Fprintf(w, "  mono mz:%f refined:%f charge:%d mass:%f score:%f missed:%d s/n:%0.2f\n",
		dp.MonoisotopicMz, pr.refined, dp.Charge, dp.NeutralMass,
		dp.Fit.Score, dp.Fit.MissedPeaks, dp.SignalToNoise)
	for j, tp := range dp.Fit.Theoretical.Peaks {
		e := dp.Envelope[j]
		mark := `-`
		if (&peakset.Peak{Mz: e.Mz, Intensity: e.Intensity}).IsReal() {
			mark = `+`
		}
		fmt.Fprintf(w, "  %d mzCalc:%f intensCalc:%f mzMeas:%f intensMeas:%f %s\n",
			j, tp.Mz, tp.Intensity, e.Mz, e.Intensity, mark)
	}
}

func debugLogPrecursorUpdate(i int, numSpecs int, mzOrig float64, mzNew float64, par params) {
	if debugSpecInRange(i, numSpecs, par) {
		fmt.Printf("Spec %d precursor changed from %f to %f (%f)\n",
			i, mzOrig, mzNew, mzOrig-mzNew)
	}
}

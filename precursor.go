// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/524D/mzdecon/internal/deconv"
	"github.com/524D/mzdecon/internal/mzml"
	"github.com/524D/mzdecon/internal/peakset"
	"github.com/524D/mzdecon/internal/report"
)

var ErrProfileData = errors.New(`input mzML file must contain centroid data, not profile data`)

// precursorJob is a selected ion of an MSn spectrum together with the MS1
// spectrum it was selected from
type precursorJob struct {
	specIndex int
	ms1Index  int
	ion       mzml.SelectedIon
}

type precursorResult struct {
	job     precursorJob
	peak    *deconv.DeconvolutedPeak // nil if no envelope was accepted
	refined float64                  // optimizer refined monoisotopic m/z, 0 if unknown
	found   bool                     // the selected ion matched an MS1 peak
	source  int                      // position of peak.PeakIndex in the MS1 data arrays, -1 if none
}

// ms1Result holds the outcome for all precursors selected from one MS1
// spectrum. features are the distinct deconvoluted peaks of the spectrum,
// merged when merge_isobaric_peaks is set.
type ms1Result struct {
	ms1Index   int
	precursors []precursorResult
	features   []*deconv.DeconvolutedPeak
}

type rtSpec struct {
	rt   float64
	spec int
}

type rtSpecs []rtSpec

func (a rtSpecs) Len() int           { return len(a) }
func (a rtSpecs) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a rtSpecs) Less(i, j int) bool { return a[i].rt < a[j].rt }

// Find the index of the MS1 scan that has a retention time just less than
// the retention time in rt
func findRtMs1(rt float64, rtOfSpecs rtSpecs) int {
	j := sort.Search(len(rtOfSpecs), func(i int) bool { return rtOfSpecs[i].rt >= rt })
	if j > 0 {
		j--
	}
	return rtOfSpecs[j].spec
}

// initRtMs1 creates the data structure needed by findRtMs1
func initRtMs1(mzML *mzml.MzML) (rtSpecs, error) {
	numSpecs := mzML.NumSpecs()
	rtOfMs1Specs := make(rtSpecs, 0, numSpecs)

	for i := 0; i < numSpecs; i++ {
		msLevel, err := mzML.MSLevel(i)
		if err != nil {
			return nil, err
		}
		if msLevel == 1 {
			rt, err := mzML.RetentionTime(i)
			if err != nil {
				return nil, err
			}
			rtOfMs1Specs = append(rtOfMs1Specs, rtSpec{rt: rt, spec: i})
		}
	}
	if len(rtOfMs1Specs) == 0 {
		return nil, fmt.Errorf("no MS1 spectra found, precursor correction not possible")
	}
	sort.Stable(rtOfMs1Specs)
	return rtOfMs1Specs, nil
}

// ms1Index returns the spectrum the precursor of MSn spectrum specIndex was
// selected from. spectrumRef is used when it points to an MS1 spectrum.
// It is not always present (e.g. SCIEX), otherwise the MS1 spectrum
// preceding the MSn spectrum in retention time is taken.
func ms1Index(mzML *mzml.MzML, specIndex int, spectrumRef string, rtOfMs1Specs rtSpecs) (int, error) {
	if spectrumRef != `` {
		if i, err := mzML.ScanIndex(spectrumRef); err == nil {
			if msLevel, err := mzML.MSLevel(i); err == nil && msLevel == 1 {
				return i, nil
			}
		}
	}
	rt, err := mzML.RetentionTime(specIndex)
	if err != nil {
		return 0, err
	}
	return findRtMs1(rt, rtOfMs1Specs), nil
}

// collectPrecursors returns the precursors of all MSn spectra in the
// requested index and retention time range, grouped by MS1 spectrum
func collectPrecursors(mzML *mzml.MzML, par params) (map[int][]precursorJob, int, error) {
	rtOfMs1Specs, err := initRtMs1(mzML)
	if err != nil {
		return nil, 0, err
	}
	groups := make(map[int][]precursorJob)
	total := 0
	numSpecs := mzML.NumSpecs()
	for i := max(par.minSpecIdx, 0); i < numSpecs && i <= par.maxSpecIdx; i++ {
		msLevel, err := mzML.MSLevel(i)
		if err != nil {
			return nil, 0, err
		}
		if msLevel < 2 {
			continue
		}
		rt, err := mzML.RetentionTime(i)
		if err != nil {
			return nil, 0, err
		}
		if rt < par.minRT || rt > par.maxRT {
			continue
		}
		ions, err := mzML.SelectedIons(i)
		if err != nil {
			return nil, 0, fmt.Errorf("spectrum %d: %w", i, err)
		}
		for _, ion := range ions {
			ms1, err := ms1Index(mzML, i, ion.SpectrumRef, rtOfMs1Specs)
			if err != nil {
				return nil, 0, err
			}
			groups[ms1] = append(groups[ms1], precursorJob{specIndex: i, ms1Index: ms1, ion: ion})
			total++
		}
	}
	return groups, total, nil
}

// ms1PeakSet reads an MS1 spectrum into a peak set with estimated
// signal to noise. Peaks without intensity are left out, so peak set
// indices differ from positions in the spectrum. source maps a peak set
// index back to the position in the data arrays.
func ms1PeakSet(mzML *mzml.MzML, ms1 int, par params) (*peakset.PeakSet, []int, error) {
	centroid, err := mzML.Centroid(ms1)
	if err != nil {
		return nil, nil, err
	}
	if !centroid && !par.acceptProfile {
		return nil, nil, ErrProfileData
	}
	mzPeaks, err := mzML.ReadScan(ms1)
	if err != nil {
		return nil, nil, err
	}
	source := make([]int, 0, len(mzPeaks))
	for i, p := range mzPeaks {
		if p.Intensity > 0 {
			source = append(source, i)
		}
	}
	// Sort here, so the order of the peak set matches source
	sort.SliceStable(source, func(i, j int) bool {
		return mzPeaks[source[i]].Mz < mzPeaks[source[j]].Mz
	})
	peaks := make([]peakset.Peak, len(source))
	for i, src := range source {
		peaks[i] = peakset.Peak{Mz: mzPeaks[src].Mz, Intensity: mzPeaks[src].Intensity}
	}
	ps := peakset.New(peaks)
	ps.EstimateSignalToNoise()
	return ps, source, nil
}

// deconvoluteMs1 deconvolutes the precursors of one MS1 spectrum, in file
// order, on a single collection. A precursor that selects a peak of an
// envelope that was already deconvoluted gets the same result.
func deconvoluteMs1(mzML *mzml.MzML, ms1 int, jobs []precursorJob,
	d *deconvolution, par params) (ms1Result, error) {

	res := ms1Result{ms1Index: ms1}
	ps, source, err := ms1PeakSet(mzML, ms1, par)
	if err != nil {
		return res, fmt.Errorf("spectrum %d: %w", ms1, err)
	}
	dec := deconv.New(ps, d.scorer, d.fitter, d.cfg)

	done := make(map[int]precursorResult)
	for _, job := range jobs {
		pr := precursorResult{job: job, source: -1}
		seed := ps.HasPeak(job.ion.Mz, d.cfg.ErrorTolerance)
		if seed == nil {
			res.precursors = append(res.precursors, pr)
			continue
		}
		pr.found = true
		if prev, ok := done[seed.Index]; ok {
			pr.peak, pr.refined, pr.source = prev.peak, prev.refined, prev.source
			res.precursors = append(res.precursors, pr)
			continue
		}
		pr.peak, err = dec.DeconvolutePeak(seed)
		if err != nil {
			return res, fmt.Errorf("spectrum %d: %w", job.specIndex, err)
		}
		if pr.peak != nil {
			pr.refined, err = deconv.RefineMonoisotopicMz(pr.peak.Fit)
			if err != nil {
				if par.verbosity == infoVerbose {
					log.Printf("spectrum %d: m/z refinement failed: %v", job.specIndex, err)
				}
				pr.refined = 0
			}
			if pr.peak.PeakIndex >= 0 {
				pr.source = source[pr.peak.PeakIndex]
			}
			res.features = append(res.features, pr.peak)
			// Other isotopes of the envelope were consumed by subtraction
			for _, p := range pr.peak.Fit.Experimental {
				if p.Index >= 0 && p.Index < ps.Len() && ps.At(p.Index) == p {
					done[p.Index] = pr
				}
			}
		}
		done[seed.Index] = pr
		res.precursors = append(res.precursors, pr)
	}
	if d.cfg.MergeIsobaricPeaks {
		res.features = dec.MergeIsobaric(res.features)
	}
	return res, nil
}

// deconvolution holds what is shared by all MS1 spectra. Scorers are
// stateless and the fitter caches are safe for concurrent use.
type deconvolution struct {
	cfg    deconv.Config
	scorer deconv.Scorer
	fitter deconv.Fitter
}

func newDeconvolution(s settings) (*deconvolution, error) {
	cfg, err := s.deconvConfig()
	if err != nil {
		return nil, err
	}
	scorer, err := s.newScorer()
	if err != nil {
		return nil, err
	}
	fitter, err := s.newFitter()
	if err != nil {
		return nil, err
	}
	return &deconvolution{cfg: cfg, scorer: scorer, fitter: fitter}, nil
}

// deconvolutePrecursors processes the MS1 spectra concurrently. Results
// are in ascending MS1 order.
func deconvolutePrecursors(ctx context.Context, mzML *mzml.MzML,
	groups map[int][]precursorJob, d *deconvolution, par params) ([]ms1Result, error) {

	ms1s := make([]int, 0, len(groups))
	for ms1 := range groups {
		ms1s = append(ms1s, ms1)
	}
	sort.Ints(ms1s)

	jobs := par.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// Each goroutine writes its own index, no locking needed
	results := make([]ms1Result, len(ms1s))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(ms1s))))
	for i, ms1 := range ms1s {
		i, ms1 := i, ms1
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r, err := deconvoluteMs1(mzML, ms1, groups[ms1], d, par)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// updatePrecursors writes the monoisotopic m/z and charge of every
// deconvoluted precursor to the mzML. It returns the number of updated ions.
func updatePrecursors(mzML *mzml.MzML, results []ms1Result, s settings, par params) (int, error) {
	updated := 0
	numSpecs := mzML.NumSpecs()
	for _, r := range results {
		for _, pr := range r.precursors {
			debugLogPrecursor(os.Stdout, pr, numSpecs, par)
			if pr.peak == nil {
				continue
			}
			ion := pr.job.ion
			ion.Mz = pr.peak.MonoisotopicMz
			if s.UseRefinedMz && pr.refined != 0 {
				ion.Mz = pr.refined
			}
			ion.Charge = abs(pr.peak.Charge)
			if err := mzML.SetSelectedIon(pr.job.specIndex, ion); err != nil {
				return updated, fmt.Errorf("spectrum %d: %w", pr.job.specIndex, err)
			}
			debugLogPrecursorUpdate(pr.job.specIndex, numSpecs, pr.job.ion.Mz, ion.Mz, par)
			updated++
		}
	}
	return updated, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// makeReport collects the deconvoluted precursors and MS1 features
func makeReport(results []ms1Result, s settings) *report.Report {
	rep := report.New()
	for _, r := range results {
		for _, pr := range r.precursors {
			if pr.peak == nil {
				continue
			}
			dp := pr.peak
			p := report.Precursor{
				SpecIndex:      pr.job.specIndex,
				Ms1Index:       pr.job.ms1Index,
				OriginalMz:     pr.job.ion.Mz,
				MonoisotopicMz: dp.MonoisotopicMz,
				RefinedMz:      pr.refined,
				NeutralMass:    dp.NeutralMass,
				Charge:         dp.Charge,
				Score:          dp.Fit.Score,
				Intensity:      dp.Intensity,
				SignalToNoise:  dp.SignalToNoise,
				MissedPeaks:    dp.Fit.MissedPeaks,
				PeakIndex:      pr.source,
				Model:          s.modelName(dp.Fit),
			}
			for _, e := range dp.Envelope {
				p.Envelope = append(p.Envelope, report.EnvelopePeak{Mz: e.Mz, Intensity: e.Intensity})
			}
			rep.Precursors = append(rep.Precursors, p)
		}
		for _, f := range r.features {
			rep.Features = append(rep.Features, report.Feature{
				Ms1Index:    r.ms1Index,
				NeutralMass: f.NeutralMass,
				Charge:      f.Charge,
				Intensity:   f.Intensity,
			})
		}
	}
	return rep
}

// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/524D/mzdecon/internal/mzml"
	"github.com/524D/mzdecon/internal/report"
)

// Program name and version, appended to software list in mzML output
const progName = "mzDecon"

var progVersion = `Unknown`

// Highest absolute charge accepted on the command line
const maxAbsCharge = 999

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Command line parameters
type params struct {
	mzMLFilename   string
	outFilename    string // mzML with corrected precursors
	reportFilename string
	reportFormat   string
	format         report.Format
	configFilename string // TOML deconvolution parameters
	charge         string // Charge range, overrides charge_range
	ppm            float64
	scorer         string
	models         []string
	specFilter     string  // Range of MSn spectra to process
	minSpecIdx     int     // Lowest spectrum index to process
	maxSpecIdx     int     // Highest spectrum index to process
	rtWindow       string  // Retention time window of MSn spectra
	minRT          float64 // in seconds
	maxRT          float64
	jobs           int // MS1 spectra processed in parallel, 0: number of CPUs
	verbose        bool
	quiet          bool
	verbosity      int    // Verbosity of progress messages (infoDefault...)
	debugSpecs     string // Print debug output for given spectrum range
	acceptProfile  bool   // Accept non-peak picked profile spectra
}

var ErrRangeSpec = errors.New("invalid range specified")
var ErrVerbosity = errors.New("--verbose and --quiet are mutually exclusive")

// Data processing steps to be added to mzML file
var mzDeconProcessing = mzml.DataProcessing{
	ID: progName,
	Methods: []mzml.ProcessingMethod{
		{
			Order:       0,
			SoftwareRef: progName,
			CvPar: []mzml.CVParam{
				{
					Accession: `MS:1000780`,
					Name:      `precursor recalculation`,
				},
				{
					Accession: `MS:1000033`,
					Name:      `deisotoping`,
				},
				{
					Accession: `MS:1000034`,
					Name:      `charge deconvolution`,
				},
			},
		},
	},
}

// Parse string like "-12:6" into 2 values, -12 and 6
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12:"), the default is assigned
func parseIntRange(r string, min int, max int) (int, int, error) {
	re := regexp.MustCompile(`\s*(\-?\d*):(\-?\d*)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.Atoi(m[1])
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 3 && m[2] != "" {
		maxOut, _ = strconv.Atoi(m[2])
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// Parse string like "-12.01e1:+6" into 2 values, -120.1 and 6.0
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12.01e1:"), the default is assigned
func parseFloat64Range(r string, min float64, max float64) (
	float64, float64, error) {
	re := regexp.MustCompile(`\s*([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?):([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.ParseFloat(m[1], 64)
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 4 && m[3] != "" {
		maxOut, _ = strconv.ParseFloat(m[3], 64)
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// sanitizeParams checks the parameters, fills missing filenames and
// merges the command line into the settings. Precedence from low to high:
// defaults, TOML file, command line flags.
func sanitizeParams(cmd *cobra.Command, par *params) (settings, error) {
	s, err := loadSettings(par.configFilename)
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	if flags.Changed("charge") {
		lo, hi, err := parseIntRange(par.charge, -maxAbsCharge, maxAbsCharge)
		if err != nil {
			return s, fmt.Errorf("invalid charge range %q: %w", par.charge, err)
		}
		s.ChargeRange = []int{lo, hi}
	}
	if flags.Changed("ppm") {
		s.ErrorTolerance = par.ppm * 1e-6
	}
	if flags.Changed("scorer") {
		s.Scorer = par.scorer
	}
	if flags.Changed("model") {
		s.Models = par.models
	}
	if s.ErrorTolerance <= 0 {
		return s, fmt.Errorf("error tolerance must be positive, got %g", s.ErrorTolerance)
	}

	switch {
	case par.verbose && par.quiet:
		return s, ErrVerbosity
	case par.verbose:
		par.verbosity = infoVerbose
	case par.quiet:
		par.verbosity = infoSilent
	default:
		par.verbosity = infoDefault
	}

	par.format, err = report.ParseFormat(par.reportFormat)
	if err != nil {
		return s, fmt.Errorf("%w: %s", err, par.reportFormat)
	}

	var extension = filepath.Ext(par.mzMLFilename)
	var startName = par.mzMLFilename[0 : len(par.mzMLFilename)-len(extension)]
	if par.outFilename == "" {
		par.outFilename = startName + "-decon.mzML"
	}
	if par.reportFilename == "" {
		par.reportFilename = startName + "-decon." + par.format.String()
	}

	par.minSpecIdx, par.maxSpecIdx, err = parseIntRange(par.specFilter,
		0, math.MaxInt32)
	if err != nil {
		return s, fmt.Errorf("invalid value for parameter 'specfilter': %w", err)
	}
	par.minRT, par.maxRT, err = parseFloat64Range(par.rtWindow,
		-math.MaxFloat64, math.MaxFloat64)
	if err != nil {
		return s, fmt.Errorf("invalid value for parameter 'rt': %w", err)
	}
	return s, nil
}

// doDecon reads the mzML, deconvolutes the precursors of all MSn spectra
// and writes the corrected mzML and the report
func doDecon(ctx context.Context, par params, s settings) error {
	d, err := newDeconvolution(s)
	if err != nil {
		return err
	}

	t := time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Reading MS data: ")
	}
	mzFile, err := os.Open(par.mzMLFilename)
	if err != nil {
		return fmt.Errorf("open %s: %w", par.mzMLFilename, err)
	}
	mzML, err := mzml.Read(mzFile)
	mzFile.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", par.mzMLFilename, err)
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
		t = time.Now()
		fmt.Fprintf(os.Stderr, "Deconvoluting precursors: ")
	}

	groups, total, err := collectPrecursors(&mzML, par)
	if err != nil {
		return err
	}
	results, err := deconvolutePrecursors(ctx, &mzML, groups, d, par)
	if err != nil {
		return err
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
		t = time.Now()
		fmt.Fprintf(os.Stderr, "Updating precursors: ")
	}

	updated, err := updatePrecursors(&mzML, results, s, par)
	if err != nil {
		return err
	}
	mzML.AppendSoftwareInfo(progName, progVersion)
	mzML.AppendDataProcessing(mzDeconProcessing)

	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
	}
	if par.verbosity != infoSilent {
		fmt.Fprintf(os.Stderr, "MS1 spectra: %d Precursors: %d Updated precursors: %d\n",
			len(groups), total, updated)
	}

	if par.verbosity == infoVerbose {
		t = time.Now()
		fmt.Fprintf(os.Stderr, "Writing MS data: ")
	}
	if err := writeDeconMzML(&mzML, par); err != nil {
		return err
	}
	if err := report.Write(par.reportFilename, makeReport(results, s), par.format); err != nil {
		return fmt.Errorf("write report %s: %w", par.reportFilename, err)
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
	}
	return nil
}

func writeDeconMzML(mzML *mzml.MzML, par params) error {
	f, err := os.Create(par.outFilename)
	if err != nil {
		return fmt.Errorf("create %s: %w", par.outFilename, err)
	}
	defer f.Close()
	if err := mzML.Write(f); err != nil {
		return fmt.Errorf("write %s: %w", par.outFilename, err)
	}
	return f.Close()
}

func newRootCmd() *cobra.Command {
	var par params
	cmd := &cobra.Command{
		Use:   "mzdecon [options] <mzMLfile>",
		Short: "Correct precursor m/z and charge by isotopic envelope deconvolution",
		Long: `This program determines the monoisotopic m/z and the charge of the
precursors of MSn spectra in an mzML file. The isotopic envelope of each
selected ion is fitted in the MS1 spectrum it was selected from, using
averagine models.

The corrected mzML is written to <mzMLfile>-decon.mzML, a report of all
deconvoluted precursors to <mzMLfile>-decon.json (or .msgpack/.sqlite).
Deconvolution parameters can be read from a TOML file, command line
options override them.`,
		Example: `  mzdecon yeast.mzML
    Correct the precursors of yeast.mzML with default parameters

  mzdecon --charge 2:5 --ppm 10 --format sqlite yeast.mzML
    Only consider charges 2 to 5 and 10 ppm m/z error, report to SQLite`,
		Args:         cobra.ExactArgs(1),
		Version:      progVersion,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			par.mzMLFilename = args[0]
			s, err := sanitizeParams(cmd, &par)
			if err != nil {
				return err
			}
			return doDecon(cmd.Context(), par, s)
		},
	}
	bindFlags(cmd, &par)
	return cmd
}

// bindFlags defines the command line options of cmd, stored in par
func bindFlags(cmd *cobra.Command, par *params) {
	f := cmd.Flags()
	f.StringVar(&par.configFilename, "config", "",
		"TOML `file` with deconvolution parameters")
	f.StringVarP(&par.outFilename, "out", "o", "",
		"corrected mzML `file` (default <mzMLfile>-decon.mzML)")
	f.StringVar(&par.reportFilename, "report", "",
		"report `file` (default <mzMLfile>-decon.<format>)")
	f.StringVar(&par.reportFormat, "format", "json",
		"report `format`: json, msgpack or sqlite")
	f.StringVar(&par.charge, "charge", "1:8",
		"charge `range`, negative for negative ion mode")
	f.Float64Var(&par.ppm, "ppm", 20,
		"max m/z error (ppm) for matching peaks")
	f.StringVar(&par.scorer, "scorer", "msdeconv",
		"envelope `scorer`: msdeconv or leastsquares")
	f.StringSliceVar(&par.models, "model", nil,
		"averagine `models` to fit (default peptide)")
	f.StringVar(&par.specFilter, "specfilter", "",
		"only process MSn spectra with index in `range`, e.g. 100:200")
	f.StringVar(&par.rtWindow, "rt", "",
		"only process MSn spectra with retention time (s) in `range`")
	f.IntVarP(&par.jobs, "jobs", "j", 0,
		"number of MS1 spectra processed in parallel (default number of CPUs)")
	f.BoolVarP(&par.verbose, "verbose", "v", false, "print progress and timing")
	f.BoolVarP(&par.quiet, "quiet", "q", false, "print only errors")
	f.StringVar(&par.debugSpecs, "debug", "",
		"print debug output for given spectrum `range` e.g. 3:6")
	f.BoolVar(&par.acceptProfile, "acceptprofile", false,
		"accept non-peak picked (profile) MS1 spectra")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

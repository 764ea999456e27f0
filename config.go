// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/BurntSushi/toml"

	"github.com/524D/mzdecon/internal/averagine"
	"github.com/524D/mzdecon/internal/deconv"
	"github.com/524D/mzdecon/internal/scoring"
)

var ErrMixedChargeSign = errors.New("charge range must not contain both positive and negative charges")
var ErrNoModels = errors.New("at least one averagine model is required")

// settings are the deconvolution parameters that can be read from a TOML
// parameter file. Keys that are absent keep their default value,
// command line flags override both.
type settings struct {
	ChargeRange        []int    `toml:"charge_range"`
	ErrorTolerance     float64  `toml:"error_tolerance"` // relative, 2e-5 is 20 ppm
	ChargeCarrier      float64  `toml:"charge_carrier"`
	TruncateAfter      float64  `toml:"truncate_after"`
	IgnoreBelow        float64  `toml:"ignore_below"`
	LeftSearchLimit    int      `toml:"left_search_limit"`
	RightSearchLimit   int      `toml:"right_search_limit"`
	Recalibrate        bool     `toml:"recalibrate"`
	UseQuickCharge     bool     `toml:"use_quick_charge"`
	UseSubtraction     bool     `toml:"use_subtraction"`
	ScaleMethod        string   `toml:"scale_method"`
	MergeIsobaricPeaks bool     `toml:"merge_isobaric_peaks"`
	MinimumIntensity   float64  `toml:"minimum_intensity"`
	Scorer             string   `toml:"scorer"`
	ScoreThreshold     float64  `toml:"score_threshold"` // 0: default of the scorer
	Models             []string `toml:"models"`
	UseRefinedMz       bool     `toml:"use_refined_mz"` // write the optimizer refined m/z to the mzML
}

func defaultSettings() settings {
	cfg := deconv.DefaultConfig()
	return settings{
		ChargeRange:        []int{cfg.ChargeRange[0], cfg.ChargeRange[1]},
		ErrorTolerance:     cfg.ErrorTolerance,
		ChargeCarrier:      cfg.ChargeCarrier,
		TruncateAfter:      cfg.TruncateAfter,
		IgnoreBelow:        cfg.IgnoreBelow,
		LeftSearchLimit:    cfg.LeftSearchLimit,
		RightSearchLimit:   cfg.RightSearchLimit,
		Recalibrate:        cfg.Recalibrate,
		UseQuickCharge:     cfg.UseQuickCharge,
		UseSubtraction:     cfg.UseSubtraction,
		ScaleMethod:        cfg.ScaleMethod.String(),
		MergeIsobaricPeaks: cfg.MergeIsobaricPeaks,
		MinimumIntensity:   cfg.MinimumIntensity,
		Scorer:             `msdeconv`,
		Models:             []string{averagine.Peptide.Name},
	}
}

// loadSettings returns the default settings, overridden by the values in
// filename if it is not empty. Unknown keys are reported but not fatal.
func loadSettings(filename string) (settings, error) {
	s := defaultSettings()
	if filename == `` {
		return s, nil
	}
	md, err := toml.DecodeFile(filename, &s)
	if err != nil {
		return s, fmt.Errorf("%s: failed to parse TOML: %w", filename, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("%s: unknown parameter %q ignored", filename, key.String())
	}
	return s, nil
}

// deconvConfig converts s to the parameters of a deconv.Collection
func (s settings) deconvConfig() (deconv.Config, error) {
	cfg := deconv.DefaultConfig()
	chargeRange, err := deconv.ChargeRangeFrom(s.ChargeRange)
	if err != nil {
		return cfg, err
	}
	if (chargeRange[0] < 0 && chargeRange[1] > 0) ||
		(chargeRange[0] > 0 && chargeRange[1] < 0) {
		return cfg, ErrMixedChargeSign
	}
	scale, err := averagine.ParseScaleMethod(s.ScaleMethod)
	if err != nil {
		return cfg, err
	}
	cfg.ChargeRange = chargeRange
	cfg.ErrorTolerance = s.ErrorTolerance
	cfg.ChargeCarrier = s.ChargeCarrier
	cfg.TruncateAfter = s.TruncateAfter
	cfg.IgnoreBelow = s.IgnoreBelow
	cfg.LeftSearchLimit = s.LeftSearchLimit
	cfg.RightSearchLimit = s.RightSearchLimit
	cfg.Recalibrate = s.Recalibrate
	cfg.UseQuickCharge = s.UseQuickCharge
	cfg.UseSubtraction = s.UseSubtraction
	cfg.ScaleMethod = scale
	cfg.MergeIsobaricPeaks = s.MergeIsobaricPeaks
	cfg.MinimumIntensity = s.MinimumIntensity
	return cfg, nil
}

func (s settings) newScorer() (deconv.Scorer, error) {
	return scoring.New(s.Scorer, s.ScoreThreshold)
}

// newFitter returns a fitter for the configured models. Every model is
// wrapped in a cache, the fitter may be shared between goroutines.
func (s settings) newFitter() (deconv.Fitter, error) {
	if len(s.Models) == 0 {
		return nil, ErrNoModels
	}
	models := make([]averagine.IsotopeModel, len(s.Models))
	for i, name := range s.Models {
		m, err := averagine.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		models[i] = averagine.NewCache(m)
	}
	if len(models) == 1 {
		return deconv.AveragineFitter{Model: models[0]}, nil
	}
	return deconv.MultiAveragineFitter{Models: models}, nil
}

// modelName returns the name of the model that produced fit
func (s settings) modelName(fit *deconv.FitRecord) string {
	if fit == nil || fit.Data < 0 || fit.Data >= len(s.Models) {
		return ``
	}
	return s.Models[fit.Data]
}

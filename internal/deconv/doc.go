// Package deconv turns isotopic envelopes in a centroided spectrum into
// deconvoluted peaks with a neutral monoisotopic mass and a charge state.
//
// A Collection owns the peaks of one spectrum. Lookups never fail: where no
// peak matches, a placeholder peak (intensity 1) is returned so that the
// matching and statistics code can run uniformly. Subtract lowers the
// intensities of the peaks explained by an accepted fit; every later query
// against the same Collection sees the reduced intensities, so fits must be
// evaluated and subtracted in a well-defined order.
//
// A Collection is not safe for concurrent use. Independent spectra may be
// processed concurrently, each with its own Collection.
package deconv

// Package wavelet decomposes audio with a multilevel discrete wavelet
// transform and hides bits in the finest detail band by quantization index
// modulation (QIM).
//
// The transform matches PyWavelets' wavedec/waverec in "symmetric" mode for
// the haar and db1 to db4 filters, so coefficient arrays are ordered
// [cA_n, cD_n, ..., cD_1] and [Coefficients.Finest] is the last one.
//
// Embedding never modifies its input: [Embed] returns a new [Coefficients]
// whose finest band is a fresh array. A carrier that is too small yields a
// [*CapacityError] before anything is written.
package wavelet

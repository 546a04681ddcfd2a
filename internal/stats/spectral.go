package stats

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectral holds frequency-domain descriptors of a uniformly sampled series
type Spectral struct {
	DominantFrequencyHz float64
	CentroidHz          float64
	Energy              float64
}

// SpectralDescriptors computes frequency-domain features of a series using
// an FFT. sampleRateHz is the (estimated) sampling rate of the series. The
// DC coefficient is excluded when locating the dominant frequency so a
// constant offset (e.g. gravity) does not dominate.
func SpectralDescriptors(values []float64, sampleRateHz float64) Spectral {
	if len(values) < 4 || sampleRateHz <= 0 {
		return Spectral{}
	}

	fft := fourier.NewFFT(len(values))
	coeffs := fft.Coefficients(nil, values)

	// Power spectral density per coefficient
	psd := make([]float64, len(coeffs))
	var totalPower float64
	for i, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		psd[i] = p
		if i > 0 {
			totalPower += p
		}
	}

	var out Spectral
	out.Energy = totalPower

	if totalPower == 0 {
		return out
	}

	// Dominant frequency: largest non-DC coefficient
	dominantIdx := 1
	for i := 2; i < len(psd); i++ {
		if psd[i] > psd[dominantIdx] {
			dominantIdx = i
		}
	}
	out.DominantFrequencyHz = fft.Freq(dominantIdx) * sampleRateHz

	// Spectral centroid: power-weighted mean frequency over non-DC bins
	var weighted float64
	for i := 1; i < len(psd); i++ {
		weighted += fft.Freq(i) * sampleRateHz * psd[i]
	}
	out.CentroidHz = weighted / totalPower

	return out
}

package mfcc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// hannWindow generates a periodic Hann window of the given length.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// hzToMel converts frequency in Hz to the HTK mel scale.
func hzToMel(hz float64) float64 {
	return 1127.0 * math.Log1p(hz/700.0)
}

// melToHz converts HTK mel back to Hz.
func melToHz(mel float64) float64 {
	return 700.0 * (math.Exp(mel/1127.0) - 1.0)
}

// melFilterBank creates triangular mel filters over the positive half of
// the spectrum. Returns a [numBins x fftSize/2+1] matrix.
//
// Filter edges are placed in Hz, and every FFT bin is weighted by its
// centre frequency, so narrow low-frequency filters never collapse to zero.
func melFilterBank(numBins, fftSize, sampleRate int, lowFreq, highFreq float64) *mat.Dense {
	halfFFT := fftSize/2 + 1
	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	edges := make([]float64, numBins+2)
	step := (highMel - lowMel) / float64(numBins+1)
	for i := range edges {
		edges[i] = melToHz(lowMel + float64(i)*step)
	}

	binHz := float64(sampleRate) / float64(fftSize)
	bank := mat.NewDense(numBins, halfFFT, nil)
	for m := 0; m < numBins; m++ {
		left, center, right := edges[m], edges[m+1], edges[m+2]
		for k := 0; k < halfFFT; k++ {
			f := float64(k) * binHz
			if f <= left || f >= right {
				continue
			}
			var w float64
			if f <= center {
				w = (f - left) / (center - left)
			} else {
				w = (right - f) / (right - center)
			}
			bank.Set(m, k, w)
		}
	}
	return bank
}

// dctMatrix creates the DCT-II basis used to decorrelate log mel energies.
// Returns a [numCoeffs x numBins] matrix scaled by sqrt(2/numBins).
func dctMatrix(numCoeffs, numBins int) *mat.Dense {
	d := mat.NewDense(numCoeffs, numBins, nil)
	norm := math.Sqrt(2.0 / float64(numBins))
	for k := 0; k < numCoeffs; k++ {
		for n := 0; n < numBins; n++ {
			d.Set(k, n, norm*math.Cos(math.Pi/float64(numBins)*(float64(n)+0.5)*float64(k)))
		}
	}
	return d
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

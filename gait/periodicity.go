package gait

// Stride Periodicity
//
// A healthy walk is close to periodic, so the fraction of spectral power
// concentrated at the stride frequency is a useful data-quality signal: noisy
// tracking, occlusion gaps or non-walking motion all spread the spectrum.
//
// The estimate windows the mean-removed heel-elevation series with a Hann
// window, zero-pads to a power of two, runs a recursive radix-2 FFT and
// reports the power of the dominant non-DC bin (plus its immediate
// neighbours) as a fraction of total power. The value feeds the performance
// quality score only; it never changes a classification.

import (
	"math"
	"math/cmplx"

	"gait-analysis/pose"
)

const minPeriodicitySamples = 16

// StridePeriodicity estimates how periodic the foot motion is, in [0, 1].
// Unavailable when too few confident heel observations exist.
func StridePeriodicity(seq *pose.PoseSequence, cfg Config) Metric {
	var best Metric
	for _, side := range pose.Sides() {
		track := heelTrack(seq, cfg, side)
		if len(track) < minPeriodicitySamples {
			continue
		}
		series := make([]float64, len(track))
		for i, s := range track {
			series[i] = s.elevation
		}
		p := spectralPeakFraction(series)
		if !best.Valid || p > best.Value {
			best = ValidMetric(p)
		}
	}
	return best
}

func spectralPeakFraction(series []float64) float64 {
	var mean float64
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	size := nextPowerOfTwo(len(series))
	buffer := make([]float64, size)
	for i, v := range series {
		buffer[i] = v - mean
	}
	applyHannWindow(buffer[:len(series)])

	spectrum := fft(buffer)
	binCount := size / 2

	var total float64
	power := make([]float64, binCount)
	for i := 1; i < binCount; i++ {
		mag := cmplx.Abs(spectrum[i])
		power[i] = mag * mag
		total += power[i]
	}
	if total == 0 {
		return 0
	}

	peak := 1
	for i := 2; i < binCount; i++ {
		if power[i] > power[peak] {
			peak = i
		}
	}

	// Hann leakage spreads the stride line across adjacent bins.
	sum := power[peak]
	if peak-1 >= 1 {
		sum += power[peak-1]
	}
	if peak+1 < binCount {
		sum += power[peak+1]
	}
	return sum / total
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

func applyHannWindow(buffer []float64) {
	length := len(buffer)
	if length <= 1 {
		return
	}
	for i := range buffer {
		buffer[i] *= 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length-1)))
	}
}

// fft computes the discrete Fourier transform with the recursive
// Cooley-Tukey radix-2 algorithm. Input length must be a power of two.
func fft(input []float64) []complex128 {
	complexArray := make([]complex128, len(input))
	for i, v := range input {
		complexArray[i] = complex(v, 0)
	}
	return recursiveFFT(complexArray)
}

func recursiveFFT(complexArray []complex128) []complex128 {
	n := len(complexArray)
	if n <= 1 {
		return complexArray
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = complexArray[2*i]
		odd[i] = complexArray[2*i+1]
	}

	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := complex(math.Cos(-2*math.Pi*float64(k)/float64(n)), math.Sin(-2*math.Pi*float64(k)/float64(n)))
		result[k] = even[k] + t*odd[k]
		result[k+n/2] = even[k] - t*odd[k]
	}
	return result
}

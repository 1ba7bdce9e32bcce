package gait

// Center-of-Mass Stability
//
// The stability index measures how tightly the body center is controlled in
// the direction orthogonal to travel:
//
// 1. Project the valid COM points onto the axis orthogonal to the principal
//    travel axis (leading eigenvector of the 2-D COM covariance).
// 2. Detrend the orthogonal series with a centered moving average about half
//    a second wide, so slow drift (camera pan, curved path) is not penalised.
// 3. Take the RMS of the residual and divide by the mean hip width, which
//    normalises away body size and camera distance.
//
// Lower is more stable. The high/low cut points are configuration owned by
// the orchestrator. A trajectory too short to establish a trend (under two
// seconds of valid samples) is classified unknown, never high.

import "math"

const minStabilitySeconds = 2.0

// AnalyzeStability scores center-of-mass control from the feature stream.
func AnalyzeStability(features *FeatureSet, cfg Config) StabilityAssessment {
	assessment := StabilityAssessment{
		Index: InvalidMetric(),
		Level: StabilityUnknown,
	}
	if features == nil || features.FPS <= 0 {
		return assessment
	}

	var xs, ys, widths []float64
	for i := range features.Frames {
		f := &features.Frames[i]
		if !f.COM.Valid {
			continue
		}
		xs = append(xs, f.COM.X)
		ys = append(ys, f.COM.Y)
		if f.HipWidth.Valid {
			widths = append(widths, f.HipWidth.Value)
		}
	}
	if float64(len(xs))/features.FPS < minStabilitySeconds || len(widths) == 0 {
		return assessment
	}

	lateral := orthogonalComponent(xs, ys)
	window := int(features.FPS / 2)
	residual := detrend(lateral, window)

	var sumSq float64
	for _, v := range residual {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(residual)))

	var widthSum float64
	for _, w := range widths {
		widthSum += w
	}
	meanWidth := widthSum / float64(len(widths))
	if meanWidth <= 0 {
		return assessment
	}

	index := rms / meanWidth
	assessment.Index = ValidMetric(index)
	switch {
	case index < cfg.StabilityHighCut:
		assessment.Level = StabilityHigh
	case index <= cfg.StabilityLowCut:
		assessment.Level = StabilityMedium
	default:
		assessment.Level = StabilityLow
	}
	return assessment
}

// orthogonalComponent projects the centered point cloud onto the axis
// orthogonal to its principal axis.
func orthogonalComponent(xs, ys []float64) []float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxx, syy, sxy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	// Leading eigenvector of the 2x2 covariance matrix.
	trace := sxx + syy
	det := sxx*syy - sxy*sxy
	lambda := trace/2 + math.Sqrt(trace*trace/4-det)

	var ax, ay float64
	if math.Abs(sxy) > 1e-12 {
		ax, ay = lambda-syy, sxy
	} else if sxx >= syy {
		ax, ay = 1, 0
	} else {
		ax, ay = 0, 1
	}
	norm := math.Hypot(ax, ay)
	ax /= norm
	ay /= norm

	// Orthogonal axis.
	ox, oy := -ay, ax

	out := make([]float64, len(xs))
	for i := range xs {
		out[i] = (xs[i]-mx)*ox + (ys[i]-my)*oy
	}
	return out
}

// detrend subtracts a centered moving average from the series.
func detrend(series []float64, window int) []float64 {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	out := make([]float64, len(series))
	for i := range series {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(series) {
			hi = len(series) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += series[j]
		}
		out[i] = series[i] - sum/float64(hi-lo+1)
	}
	return out
}

package gait

// Gait Cycle Detection
//
// Foot events are detected on the heel trajectory of each side. Pixel y grows
// downward, so foot elevation is the negated heel y. A heel strike is a local
// minimum of elevation coinciding with a vertical-velocity sign change from
// negative (descending) to non-negative (grounding). Candidates closer than
// the minimum event separation to the previous accepted strike of the same
// foot are treated as tracking jitter; of two candidates inside the window
// the one with the larger velocity sign-change magnitude wins. Toe-off is the
// subsequent local maximum of vertical-velocity magnitude after a strike.
//
// A cycle spans one heel strike to the next of the same foot. Fewer than two
// strikes for a foot yields zero cycles for that side; the detector never
// extrapolates past the last frame.

import (
	"math"
	"sort"

	"gait-analysis/pose"
)

// heelSample is one confident heel observation within the sequence.
type heelSample struct {
	frame     int     // absolute frame number
	timestamp float64 // seconds
	x         float64
	elevation float64 // negated pixel y
	velocity  float64 // elevation change, px/s, central difference
	hasVel    bool
}

// DetectEvents finds the ordered heel-strike and toe-off events for one foot.
func DetectEvents(seq *pose.PoseSequence, cfg Config, side pose.Side) []FootEvent {
	track := heelTrack(seq, cfg, side)
	if len(track) < 3 {
		return nil
	}

	strikes := detectStrikes(track, cfg.MinEventSeparation, side)
	events := make([]FootEvent, 0, len(strikes)*2)
	for i, strike := range strikes {
		events = append(events, strike)
		limit := len(track)
		if i+1 < len(strikes) {
			limit = indexOfFrame(track, strikes[i+1].Frame)
		}
		if toeOff, ok := detectToeOff(track, indexOfFrame(track, strike.Frame), limit, side); ok {
			events = append(events, toeOff)
		}
	}
	return events
}

// DetectCycles segments the sequence into non-overlapping gait cycles,
// ordered by start frame across both sides.
func DetectCycles(seq *pose.PoseSequence, cfg Config) []GaitCycle {
	var cycles []GaitCycle
	for _, side := range pose.Sides() {
		cycles = append(cycles, cyclesForSide(seq, cfg, side)...)
	}
	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].StartFrame != cycles[j].StartFrame {
			return cycles[i].StartFrame < cycles[j].StartFrame
		}
		return cycles[i].Side < cycles[j].Side
	})
	return cycles
}

func cyclesForSide(seq *pose.PoseSequence, cfg Config, side pose.Side) []GaitCycle {
	events := DetectEvents(seq, cfg, side)

	var strikes []FootEvent
	toeOffs := make(map[int]FootEvent) // keyed by preceding strike frame
	var lastStrike *FootEvent
	for _, ev := range events {
		switch ev.Type {
		case HeelStrike:
			strikes = append(strikes, ev)
			last := ev
			lastStrike = &last
		case ToeOff:
			if lastStrike != nil {
				toeOffs[lastStrike.Frame] = ev
			}
		}
	}
	if len(strikes) < 2 {
		return nil
	}

	track := heelTrack(seq, cfg, side)
	contraStrikes := contralateralStrikes(seq, cfg, side)

	cycles := make([]GaitCycle, 0, len(strikes)-1)
	for i := 0; i+1 < len(strikes); i++ {
		start, end := strikes[i], strikes[i+1]
		cycle := GaitCycle{
			Side:       side,
			StartFrame: start.Frame,
			EndFrame:   end.Frame,
			Duration:   end.Timestamp - start.Timestamp,
		}
		if toeOff, ok := toeOffs[start.Frame]; ok && toeOff.Frame > start.Frame && toeOff.Frame < end.Frame {
			stance := float64(toeOff.Frame-start.Frame) / float64(end.Frame-start.Frame)
			cycle.StanceFraction = ValidMetric(stance)
			cycle.SwingFraction = ValidMetric(1 - stance)
		}
		cycle.StrideLength, cycle.StepLength, cycle.LengthUnit =
			cycleLengths(track, contraStrikes, start.Frame, end.Frame, cfg)
		cycles = append(cycles, cycle)
	}
	return cycles
}

// heelTrack collects the confident heel observations for a side, with
// central-difference elevation velocity over the observation timestamps.
func heelTrack(seq *pose.PoseSequence, cfg Config, side pose.Side) []heelSample {
	heel := pose.HeelLandmark(side)
	var track []heelSample
	for i := range seq.Frames {
		frame := &seq.Frames[i]
		kp, ok := frame.Keypoint(heel)
		if !ok || kp.Confidence < cfg.AcceptanceConfidence {
			continue
		}
		track = append(track, heelSample{
			frame:     frame.Number,
			timestamp: frame.Timestamp,
			x:         kp.X,
			elevation: -kp.Y,
		})
	}
	for i := 1; i < len(track)-1; i++ {
		dt := track[i+1].timestamp - track[i-1].timestamp
		if dt <= 0 {
			continue
		}
		track[i].velocity = (track[i+1].elevation - track[i-1].elevation) / dt
		track[i].hasVel = true
	}
	return track
}

// detectStrikes scans for elevation minima with a negative-to-non-negative
// velocity sign change, enforcing the minimum separation with the
// larger-sign-change tie-break.
func detectStrikes(track []heelSample, minSeparation float64, side pose.Side) []FootEvent {
	type candidate struct {
		event     FootEvent
		magnitude float64
	}
	var accepted []candidate

	for i := 1; i < len(track)-1; i++ {
		cur := track[i]
		if !cur.hasVel || !track[i-1].hasVel {
			continue
		}
		if !(cur.elevation < track[i-1].elevation && cur.elevation < track[i+1].elevation) {
			continue
		}
		// The tolerance keeps a sampled minimum, where the central
		// difference lands on zero, from being rejected over rounding.
		if !(track[i-1].velocity < 0 && cur.velocity >= -1e-9) {
			continue
		}

		cand := candidate{
			event: FootEvent{
				Side:      side,
				Type:      HeelStrike,
				Frame:     cur.frame,
				Timestamp: cur.timestamp,
			},
			magnitude: cur.velocity - track[i-1].velocity,
		}

		if len(accepted) > 0 {
			last := &accepted[len(accepted)-1]
			if cand.event.Timestamp-last.event.Timestamp < minSeparation {
				if cand.magnitude > last.magnitude {
					*last = cand
				}
				continue
			}
		}
		accepted = append(accepted, cand)
	}

	events := make([]FootEvent, len(accepted))
	for i, c := range accepted {
		events[i] = c.event
	}
	return events
}

// detectToeOff finds the local maximum of vertical-velocity magnitude after
// the strike at track index start, before index limit.
func detectToeOff(track []heelSample, start, limit int, side pose.Side) (FootEvent, bool) {
	if start < 0 {
		return FootEvent{}, false
	}
	best := -1
	bestMag := 0.0
	for i := start + 1; i < limit && i < len(track); i++ {
		if !track[i].hasVel {
			continue
		}
		// Near-equal peaks resolve to the earlier frame.
		mag := math.Abs(track[i].velocity)
		if mag > bestMag*(1+1e-9) {
			bestMag = mag
			best = i
		}
	}
	if best < 0 {
		return FootEvent{}, false
	}
	return FootEvent{
		Side:      side,
		Type:      ToeOff,
		Frame:     track[best].frame,
		Timestamp: track[best].timestamp,
	}, true
}

// contralateralStrikes returns the strike frames and heel x positions of the
// opposite foot, used for step-length estimation.
func contralateralStrikes(seq *pose.PoseSequence, cfg Config, side pose.Side) []heelSample {
	other := pose.SideLeft
	if side == pose.SideLeft {
		other = pose.SideRight
	}
	track := heelTrack(seq, cfg, other)
	strikes := detectStrikes(track, cfg.MinEventSeparation, other)

	out := make([]heelSample, 0, len(strikes))
	for _, s := range strikes {
		if idx := indexOfFrame(track, s.Frame); idx >= 0 {
			out = append(out, track[idx])
		}
	}
	return out
}

// cycleLengths estimates stride length (same-foot heel displacement over the
// cycle) and step length (displacement to the intervening contralateral
// strike). Lengths stay in pixel units unless a scale factor is configured;
// they are omitted, not fabricated, when the observations are gated.
func cycleLengths(track, contra []heelSample, startFrame, endFrame int, cfg Config) (stride, step Metric, unit string) {
	startIdx := indexOfFrame(track, startFrame)
	endIdx := indexOfFrame(track, endFrame)
	if startIdx < 0 || endIdx < 0 {
		return InvalidMetric(), InvalidMetric(), ""
	}

	scale := 1.0
	unit = "px"
	if cfg.ScaleMetersPerPixel > 0 {
		scale = cfg.ScaleMetersPerPixel
		unit = "m"
	}

	stride = ValidMetric(math.Abs(track[endIdx].x-track[startIdx].x) * scale)

	for _, c := range contra {
		if c.frame > startFrame && c.frame < endFrame {
			step = ValidMetric(math.Abs(c.x-track[startIdx].x) * scale)
			break
		}
	}
	return stride, step, unit
}

func indexOfFrame(track []heelSample, frame int) int {
	for i := range track {
		if track[i].frame == frame {
			return i
		}
	}
	return -1
}

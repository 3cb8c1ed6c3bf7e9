package horse_racing

import "time"

// Random is the randomness the engine needs. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// SpeedFor returns how far a horse at position moves this frame.
func SpeedFor(b MovementBehavior, position float64, rng Random) float64 {
	switch v := b.(type) {
	case ConstantSpeed:
		return v.Speed
	case TwoPhaseSpeed:
		if position < PhaseSwitchPosition {
			return v.Early
		}
		return v.Late
	case RangeSpeed:
		return v.Lo + rng.Float64()*(v.Hi-v.Lo)
	case PauseChance:
		if rng.Float64() < v.P {
			return 0
		}
		return PauseSpeed
	default:
		return DefaultSpeed
	}
}

// Advance moves every unfinished horse one frame. Horses crossing the finish
// threshold record elapsed as their finish time. It reports whether every
// horse has finished.
func Advance(horses []*Horse, elapsed time.Duration, rng Random) bool {
	allFinished := true
	for _, h := range horses {
		if h.Finished {
			continue
		}
		speed := SpeedFor(h.Type.Behavior, h.Position, rng)
		if speed > 0 {
			h.Position += speed
		}
		if h.Position >= FinishThreshold {
			h.Finished = true
			h.FinishTime = elapsed
		} else {
			allFinished = false
		}
	}
	return allFinished
}

// Positions snapshots the track for observers.
func Positions(horses []*Horse) []HorsePosition {
	out := make([]HorsePosition, 0, len(horses))
	for _, h := range horses {
		out = append(out, HorsePosition{
			Name:     h.Name,
			TypeName: h.Type.TypeName,
			Position: h.Position,
			Finished: h.Finished,
		})
	}
	return out
}

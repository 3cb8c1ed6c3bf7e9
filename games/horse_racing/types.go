package horse_racing

import (
	"strconv"
	"time"
)

// Track constants. The finish line sits short of the right edge so the last
// 2% of the track is never required to render.
const (
	FinishThreshold     = 98.0
	PhaseSwitchPosition = 50.0
	DefaultSpeed        = 0.15
	PauseSpeed          = 0.15
	TrackLength         = 100.0

	MinHorses = 2
	MaxHorses = 8

	FrameInterval = time.Second / 60
)

// MovementBehavior is the per-frame speed rule of a horse type. The set of
// variants is closed: ConstantSpeed, TwoPhaseSpeed, RangeSpeed and PauseChance.
type MovementBehavior interface {
	behavior()
	Describe() string
}

// ConstantSpeed advances by the same amount every frame.
type ConstantSpeed struct {
	Speed float64
}

// TwoPhaseSpeed uses Early before the halfway mark and Late after it.
type TwoPhaseSpeed struct {
	Early float64
	Late  float64
}

// RangeSpeed draws a fresh speed in [Lo, Hi] every frame.
type RangeSpeed struct {
	Lo float64
	Hi float64
}

// PauseChance stands still with probability P, otherwise moves at PauseSpeed.
type PauseChance struct {
	P float64
}

func (ConstantSpeed) behavior() {}
func (TwoPhaseSpeed) behavior() {}
func (RangeSpeed) behavior()    {}
func (PauseChance) behavior()   {}

func (b ConstantSpeed) Describe() string { return "steady " + formatSpeed(b.Speed) }
func (b TwoPhaseSpeed) Describe() string {
	return "starts " + formatSpeed(b.Early) + ", finishes " + formatSpeed(b.Late)
}
func (b RangeSpeed) Describe() string {
	return "erratic " + formatSpeed(b.Lo) + "-" + formatSpeed(b.Hi)
}
func (b PauseChance) Describe() string { return "stalls " + formatPercent(b.P) + " of the time" }

// HorseType is an archetype from the catalog.
type HorseType struct {
	TypeName string
	Behavior MovementBehavior
}

// Horse is a roster entry. It holds its type by value next to its own race
// fields so type data never collides with race state.
type Horse struct {
	Name       string
	Type       HorseType
	Position   float64
	Finished   bool
	FinishTime time.Duration
}

func (h *Horse) resetRace() {
	h.Position = 0
	h.Finished = false
	h.FinishTime = 0
}

// HorsePosition is one horse's place on the track in a frame.
type HorsePosition struct {
	Name     string  `json:"name"`
	TypeName string  `json:"type"`
	Position float64 `json:"position"` // percent of track width
	Finished bool    `json:"finished"`
}

// RaceStatus is the lifecycle of a table's race.
type RaceStatus string

const (
	StatusIdle     RaceStatus = "idle"
	StatusRunning  RaceStatus = "running"
	StatusFinished RaceStatus = "finished"
)

func formatSpeed(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatPercent(p float64) string { return strconv.FormatFloat(p*100, 'f', 0, 64) + "%" }

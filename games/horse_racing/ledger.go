package horse_racing

import "math"

// MaxBet is the largest wager a ledger holds. A full roster's total stake and
// the top three payouts (3x + 2x + 1x) all stay exact in int64 below it.
const MaxBet = math.MaxInt64 / (3 * MaxHorses)

// Ledger maps horse names to wagers. Wagers never go below zero.
type Ledger struct {
	bets map[string]int64
}

func NewLedger() *Ledger {
	return &Ledger{bets: make(map[string]int64)}
}

// Open registers a horse with a zero wager.
func (l *Ledger) Open(name string) {
	l.bets[name] = 0
}

// Has reports whether name has an entry.
func (l *Ledger) Has(name string) bool {
	_, ok := l.bets[name]
	return ok
}

// Adjust applies delta, clamping at zero and saturating at MaxBet.
func (l *Ledger) Adjust(name string, delta int64) int64 {
	bet := l.bets[name]
	var next int64
	switch {
	case delta > MaxBet-bet:
		next = MaxBet
	case delta < -bet:
		next = 0
	default:
		next = bet + delta
	}
	l.bets[name] = next
	return next
}

func (l *Ledger) Get(name string) int64 {
	return l.bets[name]
}

// AllZero is true when no wager is above zero, including an empty ledger.
func (l *Ledger) AllZero() bool {
	for _, b := range l.bets {
		if b != 0 {
			return false
		}
	}
	return true
}

func (l *Ledger) Total() int64 {
	var total int64
	for _, b := range l.bets {
		total += b
	}
	return total
}

// Snapshot returns a copy safe to hand to observers.
func (l *Ledger) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(l.bets))
	for k, v := range l.bets {
		out[k] = v
	}
	return out
}

func (l *Ledger) Clear() {
	l.bets = make(map[string]int64)
}

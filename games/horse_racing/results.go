package horse_racing

import (
	"fmt"
	"math"
	"sort"
)

// payoutMultipliers by finishing rank; ranks past the table pay nothing.
var payoutMultipliers = []int64{3, 2, 1}

// Standing is one horse's line in the results.
type Standing struct {
	Rank     int     `json:"rank"` // 1-based
	Name     string  `json:"name"`
	TypeName string  `json:"type"`
	Time     float64 `json:"time"` // seconds
	Bet      int64   `json:"bet"`
	Winnings int64   `json:"winnings"`
}

type Results struct {
	Standings     []Standing `json:"standings"`
	TotalWinnings int64      `json:"total_winnings"`
}

// Rank orders horses by finish time. Equal times keep roster order. The input
// slice is left untouched.
func Rank(horses []*Horse) []*Horse {
	ranked := append([]*Horse(nil), horses...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinishTime < ranked[j].FinishTime
	})
	return ranked
}

// Payout is the winnings for a bet at a zero-based rank. Ledger bets never
// exceed MaxBet, so the product is exact; larger inputs saturate.
func Payout(rank int, bet int64) int64 {
	if rank < 0 || rank >= len(payoutMultipliers) || bet <= 0 {
		return 0
	}
	m := payoutMultipliers[rank]
	if bet > math.MaxInt64/m {
		return math.MaxInt64
	}
	return bet * m
}

// CalculatePayouts settles every horse's own bet against its rank.
func CalculatePayouts(ranked []*Horse, ledger *Ledger) *Results {
	res := &Results{Standings: make([]Standing, 0, len(ranked))}
	for i, h := range ranked {
		bet := ledger.Get(h.Name)
		won := Payout(i, bet)
		res.TotalWinnings += won
		res.Standings = append(res.Standings, Standing{
			Rank:     i + 1,
			Name:     h.Name,
			TypeName: h.Type.TypeName,
			Time:     h.FinishTime.Seconds(),
			Bet:      bet,
			Winnings: won,
		})
	}
	return res
}

// Lines renders the ranked list, e.g. "1. Dash (Sprinter) - 1.63s".
func (r *Results) Lines() []string {
	out := make([]string, 0, len(r.Standings))
	for _, s := range r.Standings {
		out = append(out, fmt.Sprintf("%d. %s (%s) - %.2fs", s.Rank, s.Name, s.TypeName, s.Time))
	}
	return out
}

// BetLines renders per-horse bets and winnings.
func (r *Results) BetLines() []string {
	out := make([]string, 0, len(r.Standings))
	for _, s := range r.Standings {
		out = append(out, fmt.Sprintf("%s: Bet %d, Won %d", s.Name, s.Bet, s.Winnings))
	}
	return out
}

func (r *Results) TotalLine() string {
	return fmt.Sprintf("Total Winnings: %d", r.TotalWinnings)
}

// Winner is the first standing, if any.
func (r *Results) Winner() (Standing, bool) {
	if r == nil || len(r.Standings) == 0 {
		return Standing{}, false
	}
	return r.Standings[0], true
}

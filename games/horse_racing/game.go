package horse_racing

import (
	"math/rand"
	"sync"
	"time"

	"hrc-derby/utils"

	"github.com/google/uuid"
)

// Game is one table's full state: roster, ledger and race session. Every
// mutation goes through its methods under a single lock, so adapters and the
// frame driver never interleave inside an operation.
type Game struct {
	mu        sync.Mutex
	roster    *Roster
	ledger    *Ledger
	rng       Random
	status    RaceStatus
	raceID    uuid.UUID
	startedAt time.Time
	pick      int
	results   *Results
}

// NewGame creates an idle game drawing types from catalog. A nil rng gets a
// time-seeded source.
func NewGame(catalog *Catalog, rng Random) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		roster: NewRoster(catalog),
		ledger: NewLedger(),
		rng:    rng,
		status: StatusIdle,
		pick:   -1,
	}
}

// Frame is the outcome of one tick.
type Frame struct {
	RaceID    uuid.UUID       `json:"race_id"`
	Elapsed   time.Duration   `json:"elapsed"`
	Positions []HorsePosition `json:"positions"`
	Done      bool            `json:"done"`
	Results   *Results        `json:"results,omitempty"`
}

// AddHorse enters a new horse and opens its bet at zero.
func (g *Game) AddHorse(name string) (Horse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == StatusRunning {
		return Horse{}, ErrRaceInProgress
	}
	h, err := g.roster.Add(name, g.rng)
	if err != nil {
		return Horse{}, err
	}
	g.ledger.Open(h.Name)
	utils.BotLogf("DERBY", "Added horse %q as %s", h.Name, h.Type.TypeName)
	return *h, nil
}

// AdjustBet changes a horse's wager by delta, never below zero.
func (g *Game) AdjustBet(name string, delta int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == StatusRunning {
		return 0, ErrRaceInProgress
	}
	if !g.ledger.Has(name) {
		return 0, ErrUnknownHorse
	}
	return g.ledger.Adjust(name, delta), nil
}

// SelectHorse marks a horse as the current pick. It never touches the ledger.
func (g *Game) SelectHorse(index int) (Horse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == StatusRunning {
		return Horse{}, ErrRaceInProgress
	}
	h := g.roster.At(index)
	if h == nil {
		return Horse{}, ErrUnknownHorse
	}
	g.pick = index
	return *h, nil
}

// Pick returns the currently selected horse, if any.
func (g *Game) Pick() (Horse, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.roster.At(g.pick)
	if h == nil {
		return Horse{}, false
	}
	return *h, true
}

// StartRace validates the table and puts every horse back on the line.
func (g *Game) StartRace(now time.Time) (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roster.Len() < MinHorses {
		return uuid.Nil, ErrNotEnoughHorses
	}
	if g.status == StatusRunning {
		return uuid.Nil, ErrRaceInProgress
	}
	if g.ledger.AllZero() {
		return uuid.Nil, ErrNoBets
	}
	for _, h := range g.roster.Horses() {
		h.resetRace()
	}
	g.results = nil
	g.status = StatusRunning
	g.startedAt = now
	g.raceID = uuid.New()
	utils.BotLogf("DERBY", "Race %s started with %d horses, %d staked", g.raceID, g.roster.Len(), g.ledger.Total())
	return g.raceID, nil
}

// Tick advances the race identified by raceID by one frame. A tick for a race
// that was reset or replaced returns ErrStaleRace and changes nothing.
func (g *Game) Tick(raceID uuid.UUID, now time.Time) (Frame, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusRunning || raceID != g.raceID {
		return Frame{}, ErrStaleRace
	}
	elapsed := now.Sub(g.startedAt)
	horses := g.roster.Horses()
	done := Advance(horses, elapsed, g.rng)
	frame := Frame{RaceID: raceID, Elapsed: elapsed, Positions: Positions(horses), Done: done}
	if done {
		g.results = CalculatePayouts(Rank(horses), g.ledger)
		g.status = StatusFinished
		frame.Results = g.results
		utils.BotLogf("DERBY", "Race %s finished in %.2fs, total winnings %d", raceID, elapsed.Seconds(), g.results.TotalWinnings)
	}
	return frame, nil
}

// Reset returns the table to a freshly created state.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roster.Clear()
	g.ledger.Clear()
	g.status = StatusIdle
	g.raceID = uuid.Nil
	g.startedAt = time.Time{}
	g.pick = -1
	g.results = nil
}

func (g *Game) Status() RaceStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) IsRacing() bool { return g.Status() == StatusRunning }

func (g *Game) Results() *Results {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.results
}

// HorseView is a read-only copy of a roster entry.
type HorseView struct {
	Name       string  `json:"name"`
	TypeName   string  `json:"type"`
	Behavior   string  `json:"behavior"`
	Position   float64 `json:"position"`
	Finished   bool    `json:"finished"`
	FinishTime float64 `json:"finish_time"`
	Bet        int64   `json:"bet"`
}

// State is a consistent copy of the whole table for rendering.
type State struct {
	Status    RaceStatus  `json:"status"`
	RaceID    uuid.UUID   `json:"race_id"`
	Horses    []HorseView `json:"horses"`
	Pick      int         `json:"pick"`
	Available int         `json:"available_types"`
	TotalBet  int64       `json:"total_bet"`
	Results   *Results    `json:"results,omitempty"`
}

func (g *Game) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := State{
		Status:    g.status,
		RaceID:    g.raceID,
		Horses:    make([]HorseView, 0, g.roster.Len()),
		Pick:      g.pick,
		Available: len(g.roster.Available()),
		TotalBet:  g.ledger.Total(),
		Results:   g.results,
	}
	for _, h := range g.roster.Horses() {
		desc := ""
		if h.Type.Behavior != nil {
			desc = h.Type.Behavior.Describe()
		}
		st.Horses = append(st.Horses, HorseView{
			Name:       h.Name,
			TypeName:   h.Type.TypeName,
			Behavior:   desc,
			Position:   h.Position,
			Finished:   h.Finished,
			FinishTime: h.FinishTime.Seconds(),
			Bet:        g.ledger.Get(h.Name),
		})
	}
	return st
}

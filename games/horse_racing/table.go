package horse_racing

import (
	"context"
	"sync"
	"time"

	"hrc-derby/utils"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventRoster   EventKind = "roster"
	EventBets     EventKind = "bets"
	EventStart    EventKind = "start"
	EventFrame    EventKind = "frame"
	EventFinished EventKind = "finished"
	EventReset    EventKind = "reset"
	// EventSnapshot is never published; adapters send it to a new observer.
	EventSnapshot EventKind = "snapshot"
)

// Event is what a table pushes to its observers.
type Event struct {
	Kind  EventKind `json:"kind"`
	Frame *Frame    `json:"frame,omitempty"`
	State *State    `json:"state,omitempty"`
}

// Table is a Game plus the loop that drives its races and the observers that
// watch it. Presentation adapters talk to tables, never to a Game directly.
type Table struct {
	ID            string
	FrameInterval time.Duration
	Now           func() time.Time

	game       *Game
	animations *utils.AnimationManager

	mu           sync.Mutex
	subs         map[int]chan Event
	nextSub      int
	lastActivity time.Time
}

func NewTable(id string, game *Game, animations *utils.AnimationManager) *Table {
	if animations == nil {
		animations = utils.Animations
	}
	return &Table{
		ID:            id,
		FrameInterval: FrameInterval,
		Now:           time.Now,
		game:          game,
		animations:    animations,
		subs:          make(map[int]chan Event),
		lastActivity:  time.Now(),
	}
}

func (t *Table) Game() *Game { return t.game }

func (t *Table) Snapshot() State { return t.game.Snapshot() }

func (t *Table) AddHorse(name string) (Horse, error) {
	h, err := t.game.AddHorse(name)
	if err != nil {
		return h, err
	}
	t.publishState(EventRoster)
	return h, nil
}

func (t *Table) AdjustBet(name string, delta int64) (int64, error) {
	bet, err := t.game.AdjustBet(name, delta)
	if err != nil {
		return bet, err
	}
	t.publishState(EventBets)
	return bet, nil
}

func (t *Table) SelectHorse(index int) (Horse, error) {
	t.touch()
	return t.game.SelectHorse(index)
}

// Start begins a race and drives it in the background until every horse has
// finished, the table is reset, or ctx is cancelled. ctx should outlive the
// request that triggered the start.
func (t *Table) Start(ctx context.Context) (uuid.UUID, error) {
	raceID, err := t.game.StartRace(t.Now())
	if err != nil {
		return raceID, err
	}
	t.publishState(EventStart)
	t.animations.StartAnimation(ctx, t.ID, func(ctx context.Context) {
		t.run(ctx, raceID)
	})
	return raceID, nil
}

func (t *Table) run(ctx context.Context, raceID uuid.UUID) {
	ticker := time.NewTicker(t.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		frame, err := t.game.Tick(raceID, t.Now())
		if err != nil {
			return
		}
		if frame.Done {
			t.publish(Event{Kind: EventFinished, Frame: &frame})
			return
		}
		t.publish(Event{Kind: EventFrame, Frame: &frame})
	}
}

// Reset abandons any running race and clears the table.
func (t *Table) Reset() {
	t.animations.CancelAnimation(t.ID)
	t.game.Reset()
	t.publishState(EventReset)
}

// IsRacing reports whether a race loop owns the table.
func (t *Table) IsRacing() bool {
	return t.game.IsRacing()
}

// Subscribe registers an observer. Slow observers lose frames rather than
// stall the race. The returned func unsubscribes and closes the channel.
func (t *Table) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
}

func (t *Table) publishState(kind EventKind) {
	st := t.game.Snapshot()
	t.publish(Event{Kind: kind, State: &st})
}

func (t *Table) publish(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = time.Now()
	for _, ch := range t.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Full: drop the oldest queued event so the newest one lands.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

func (t *Table) touch() {
	t.mu.Lock()
	t.lastActivity = time.Now()
	t.mu.Unlock()
}

// IdleSince reports when the table last saw activity.
func (t *Table) IdleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

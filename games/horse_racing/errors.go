package horse_racing

import "errors"

// Rejections surfaced to players. Adapters turn these into user-facing notices.
var (
	ErrRosterFull       = errors.New("you can only have up to 8 horses")
	ErrNoTypesAvailable = errors.New("no more unique horse types available")
	ErrEmptyName        = errors.New("please enter a name for the horse")
	ErrDuplicateName    = errors.New("a horse with that name is already entered")
	ErrUnknownHorse     = errors.New("no such horse on the roster")
	ErrNotEnoughHorses  = errors.New("you need at least 2 horses to start the race")
	ErrNoBets           = errors.New("please place at least one bet before starting the race")
	ErrRaceInProgress   = errors.New("a race is already running")
	ErrStaleRace        = errors.New("race is no longer current")
)

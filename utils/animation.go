package utils

import (
	"context"
	"sync"
)

// AnimationSequence is a running background loop that can be cancelled by ID
type AnimationSequence struct {
	ID      string
	Context context.Context
	Cancel  context.CancelFunc
	done    chan struct{}
}

// Done is closed once the sequence's loop has returned
func (as *AnimationSequence) Done() <-chan struct{} {
	return as.done
}

// AnimationManager manages background animation sequences
type AnimationManager struct {
	sequences map[string]*AnimationSequence
	mutex     sync.RWMutex
}

// Global animation manager
var Animations = NewAnimationManager()

// NewAnimationManager creates an empty manager
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{
		sequences: make(map[string]*AnimationSequence),
	}
}

// StartAnimation runs loop in the background under id. An existing sequence
// with the same id is cancelled first.
func (am *AnimationManager) StartAnimation(parent context.Context, id string, loop func(ctx context.Context)) *AnimationSequence {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	// Cancel existing animation with same ID
	if existing, exists := am.sequences[id]; exists {
		existing.Cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	sequence := &AnimationSequence{
		ID:      id,
		Context: ctx,
		Cancel:  cancel,
		done:    make(chan struct{}),
	}
	am.sequences[id] = sequence

	go am.runAnimation(sequence, loop)
	return sequence
}

func (am *AnimationManager) runAnimation(sequence *AnimationSequence, loop func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			BotLogf("ANIMATION", "Sequence %s panicked: %v", sequence.ID, r)
		}
		sequence.Cancel()
		am.mutex.Lock()
		// A replacement may already be registered under the same ID
		if am.sequences[sequence.ID] == sequence {
			delete(am.sequences, sequence.ID)
		}
		am.mutex.Unlock()
		close(sequence.done)
	}()

	loop(sequence.Context)
}

// CancelAnimation cancels a running animation sequence
func (am *AnimationManager) CancelAnimation(id string) {
	am.mutex.RLock()
	sequence, exists := am.sequences[id]
	am.mutex.RUnlock()

	if exists {
		sequence.Cancel()
	}
}

// IsAnimationRunning checks if an animation is currently running
func (am *AnimationManager) IsAnimationRunning(id string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, exists := am.sequences[id]
	return exists
}

// CancelAll stops every running sequence, used on shutdown
func (am *AnimationManager) CancelAll() {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for _, sequence := range am.sequences {
		sequence.Cancel()
	}
}

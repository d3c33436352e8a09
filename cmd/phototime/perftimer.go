package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type runningPhase struct {
	description string
	startedAt   time.Time
}

type completedPhase struct {
	description string
	duration    time.Duration
}

// phaseTimer measures the wall-clock duration of the program's phases.
// Phases are keyed by an opaque token so overlapping measurements stay
// independent.
type phaseTimer struct {
	logger     zerolog.Logger
	mu         sync.Mutex
	inFlight   map[uuid.UUID]runningPhase
	completed  []completedPhase
	cumulative time.Duration
}

func newPhaseTimer(logger zerolog.Logger) *phaseTimer {
	return &phaseTimer{
		logger:   logger,
		inFlight: make(map[uuid.UUID]runningPhase),
	}
}

func (pt *phaseTimer) start(description string) uuid.UUID {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	id := uuid.New()
	pt.inFlight[id] = runningPhase{description, time.Now()}
	return id
}

func (pt *phaseTimer) stop(id uuid.UUID) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	phase, ok := pt.inFlight[id]
	if !ok {
		pt.logger.Panic().Str("id", id.String()).Msg("stopped a phase timer that was never started")
	}
	delete(pt.inFlight, id)

	duration := time.Since(phase.startedAt)
	pt.completed = append(pt.completed, completedPhase{phase.description, duration})
	pt.cumulative += duration

	pt.logger.Debug().
		Str("phase", phase.description).
		Dur("duration", duration).
		Msg("phase completed")
}

func (pt *phaseTimer) report() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for _, phase := range pt.completed {
		pt.logger.Debug().
			Str("phase", phase.description).
			Dur("duration", phase.duration).
			Msg("phase timing")
	}
	pt.logger.Debug().Dur("cumulative", pt.cumulative).Msg("total phase time")
}

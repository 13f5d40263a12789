package crawl

import (
	"fmt"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

type State string

const (
	StateIdle             State = "idle"
	StateLoading          State = "loading"
	StateExtracting       State = "extracting"
	StateDecidingContinue State = "deciding_continue"
	StateStopped          State = "stopped"
	StateAborted          State = "aborted"
)

type StopReason string

const (
	StopNoAffordance StopReason = "no_more_affordance"
	StopNoNewRecords StopReason = "no_new_records"
	StopMaxCycles    StopReason = "max_cycles"
)

var allowedTransitions = map[State][]State{
	StateIdle:             {StateLoading, StateAborted},
	StateLoading:          {StateExtracting, StateStopped, StateAborted},
	StateExtracting:       {StateDecidingContinue, StateAborted},
	StateDecidingContinue: {StateLoading, StateStopped, StateAborted},
}

// Session is the state of one crawl run. It is owned by a single goroutine.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	State            State
	StopReason       StopReason
	Err              error
	Cycles           int
	ConsecutiveEmpty int
	Snapshots        int
	Skipped          int

	dedup *match.Deduplicator
}

func NewSession(id string, startedAt time.Time) *Session {
	return &Session{
		ID:        id,
		StartedAt: startedAt,
		State:     StateIdle,
		dedup:     match.NewDeduplicator(256),
	}
}

// Transition moves the session to next when the state machine allows it.
func (s *Session) Transition(next State) error {
	for _, allowed := range allowedTransitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid crawl transition %s -> %s", s.State, next)
}

// Absorb folds one extracted batch into the session and returns the number of
// new records. A batch with nothing new bumps ConsecutiveEmpty.
func (s *Session) Absorb(batch []match.Record) int {
	s.Snapshots++
	added := len(s.dedup.Add(batch))
	if added == 0 {
		s.ConsecutiveEmpty++
	} else {
		s.ConsecutiveEmpty = 0
	}
	return added
}

func (s *Session) Stop(reason StopReason, at time.Time) {
	s.State = StateStopped
	s.StopReason = reason
	s.FinishedAt = at
}

// Abort ends the session with err. Records gathered so far stay available.
func (s *Session) Abort(err error, at time.Time) {
	s.State = StateAborted
	s.Err = err
	s.FinishedAt = at
}

func (s *Session) Done() bool {
	return s.State == StateStopped || s.State == StateAborted
}

func (s *Session) Records() []match.Record {
	return s.dedup.Records()
}

func (s *Session) RecordCount() int {
	return s.dedup.Len()
}

// Summary is the serializable outcome of a session.
type Summary struct {
	ID         string
	State      State
	StopReason StopReason
	Error      string
	Cycles     int
	Snapshots  int
	Skipped    int
	Records    int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (s *Session) Summary() Summary {
	out := Summary{
		ID:         s.ID,
		State:      s.State,
		StopReason: s.StopReason,
		Cycles:     s.Cycles,
		Snapshots:  s.Snapshots,
		Skipped:    s.Skipped,
		Records:    s.dedup.Len(),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

package crawl

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

func TestSession_TransitionsFollowStateMachine(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", time.Now())
	for _, next := range []State{StateLoading, StateExtracting, StateDecidingContinue, StateLoading, StateExtracting, StateDecidingContinue} {
		if err := s.Transition(next); err != nil {
			t.Fatalf("Transition(%s): %v", next, err)
		}
	}
	if err := s.Transition(StateExtracting); err == nil {
		t.Fatalf("expected deciding -> extracting to be rejected")
	}
	if err := s.Transition(StateStopped); err != nil {
		t.Fatalf("Transition(stopped): %v", err)
	}
	if err := s.Transition(StateLoading); err == nil {
		t.Fatalf("expected terminal state to reject transitions")
	}
}

func TestSession_AbsorbCountsConsecutiveEmpty(t *testing.T) {
	t.Parallel()

	a := match.Record{Competition: "C", HomeTeam: "A", AwayTeam: "B", RawDate: "1 June"}
	b := match.Record{Competition: "C", HomeTeam: "D", AwayTeam: "E", RawDate: "1 June"}

	s := NewSession("s1", time.Now())
	if got := s.Absorb([]match.Record{a}); got != 1 {
		t.Fatalf("expected 1 new, got %d", got)
	}
	s.Absorb([]match.Record{a})
	s.Absorb([]match.Record{a})
	if s.ConsecutiveEmpty != 2 {
		t.Fatalf("expected 2 empty cycles, got %d", s.ConsecutiveEmpty)
	}
	s.Absorb([]match.Record{a, b})
	if s.ConsecutiveEmpty != 0 || s.RecordCount() != 2 {
		t.Fatalf("expected reset and 2 records, got empty=%d records=%d", s.ConsecutiveEmpty, s.RecordCount())
	}
}

func TestSession_AbortKeepsRecords(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", time.Now())
	s.Absorb([]match.Record{{Competition: "C", HomeTeam: "A", AwayTeam: "B", RawDate: "1 June"}})
	s.Abort(errors.New("boom"), time.Now())

	summary := s.Summary()
	if summary.State != StateAborted || summary.Error != "boom" || summary.Records != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(s.Records()) != 1 {
		t.Fatalf("expected partial records to survive abort")
	}
}

package engine

import (
	"errors"
	"testing"

	"github.com/avelichko/quizduel-client/internal/protocol"
)

func intp(v int) *int { return &v }

func activeState() State {
	s := NewState()
	s.Phase = PhaseActive
	s.TaskNumber = 1
	s.TotalTasks = 5
	s.Timer = 300
	s.AttemptsLeft = 3
	s.Scores = map[int]int{1: 0, 2: 0}
	s.CurrentTask = &protocol.Task{ID: 7, Question: "2+2?"}
	return s
}

func TestApply_PhaseTransitions(t *testing.T) {
	cases := []struct {
		name      string
		setup     State
		event     protocol.Event
		wantPhase Phase
		wantErr   error
	}{
		{
			name:      "searching moves idle to queued",
			setup:     NewState(),
			event:     protocol.Status{Status: "searching"},
			wantPhase: PhaseQueued,
		},
		{
			name: "status idle cancels the queue",
			setup: func() State {
				s := NewState()
				s.Phase = PhaseQueued
				return s
			}(),
			event:     protocol.Status{Status: "idle"},
			wantPhase: PhaseIdle,
		},
		{
			name:      "searching outside idle is rejected",
			setup:     activeState(),
			event:     protocol.Status{Status: "searching"},
			wantPhase: PhaseActive,
			wantErr:   ErrPhaseMismatch,
		},
		{
			name:      "room_created from idle",
			setup:     NewState(),
			event:     protocol.RoomCreated{RoomCode: "4821"},
			wantPhase: PhaseRoomPending,
		},
		{
			name: "countdown from room_pending",
			setup: func() State {
				s := NewState()
				s.Phase = PhaseRoomPending
				s.RoomCode = "4821"
				return s
			}(),
			event:     protocol.Countdown{Value: 3},
			wantPhase: PhaseCountdown,
		},
		{
			name:      "countdown during active is rejected",
			setup:     activeState(),
			event:     protocol.Countdown{Value: 3},
			wantPhase: PhaseActive,
			wantErr:   ErrPhaseMismatch,
		},
		{
			name: "game_start from countdown",
			setup: func() State {
				s := NewState()
				s.Phase = PhaseCountdown
				return s
			}(),
			event:     protocol.GameStart{CurrentTask: protocol.Task{ID: 1, Question: "q"}, TotalTasks: 5, Timer: 300, AttemptsLeft: 3},
			wantPhase: PhaseActive,
		},
		{
			name:      "game_start from idle is rejected",
			setup:     NewState(),
			event:     protocol.GameStart{TotalTasks: 5},
			wantPhase: PhaseIdle,
			wantErr:   ErrPhaseMismatch,
		},
		{
			name:      "game_cancelled resets to idle",
			setup:     activeState(),
			event:     protocol.GameCancelled{Reason: "opponent left the lobby"},
			wantPhase: PhaseIdle,
		},
		{
			name: "error during queue resets to idle",
			setup: func() State {
				s := NewState()
				s.Phase = PhaseQueued
				return s
			}(),
			event:     protocol.ServerError{Message: "boom"},
			wantPhase: PhaseIdle,
		},
		{
			name:      "error while idle stays idle",
			setup:     NewState(),
			event:     protocol.ServerError{Message: "boom"},
			wantPhase: PhaseIdle,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.setup, tc.event)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want err %v, got %v", tc.wantErr, err)
				}
				got = tc.setup // caller keeps prior state on rejection
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got.Phase != tc.wantPhase {
				t.Fatalf("want phase %q, got %q", tc.wantPhase, got.Phase)
			}
		})
	}
}

func TestApply_RoomCreatedStoresCode(t *testing.T) {
	s, err := Apply(NewState(), protocol.RoomCreated{RoomCode: "4821"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Phase != PhaseRoomPending || s.RoomCode != "4821" {
		t.Fatalf("want room_pending/4821, got %s/%s", s.Phase, s.RoomCode)
	}
}

func TestApply_GameStartInitializesMatch(t *testing.T) {
	s := NewState()
	s.Phase = PhaseCountdown

	s, err := Apply(s, protocol.GameStart{
		CurrentTask:  protocol.Task{ID: 3, Question: "q", Options: []string{"a", "b"}},
		TotalTasks:   7,
		Timer:        600,
		AttemptsLeft: 3,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.TaskNumber != 1 || s.TotalTasks != 7 || s.Timer != 600 || s.AttemptsLeft != 3 {
		t.Fatalf("bad init: %+v", s)
	}
	if s.CurrentTask == nil || s.CurrentTask.ID != 3 {
		t.Fatalf("current task not stored: %+v", s.CurrentTask)
	}
	if len(s.Scores) != 0 {
		t.Fatalf("scores should start empty, got %+v", s.Scores)
	}
}

func TestApply_NextTaskStrictlyIncrements(t *testing.T) {
	s := activeState()
	for want := 2; want <= 5; want++ {
		var err error
		s, err = Apply(s, protocol.NextTask{CurrentTask: protocol.Task{ID: want}, AttemptsLeft: 3})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if s.TaskNumber != want {
			t.Fatalf("want taskNumber=%d, got %d", want, s.TaskNumber)
		}
	}
}

func TestApply_NextTaskResetsPerTaskState(t *testing.T) {
	s := activeState()
	s.OpponentAnswered = true
	s.Feedback = FeedbackIncorrect
	s.CorrectAnswer = "4"

	s, err := Apply(s, protocol.NextTask{CurrentTask: protocol.Task{ID: 8}, AttemptsLeft: 3})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.OpponentAnswered || s.Feedback != FeedbackNone || s.CorrectAnswer != "" {
		t.Fatalf("per-task state not reset: %+v", s)
	}
	if s.AttemptsLeft != 3 {
		t.Fatalf("want attempts restored to 3, got %d", s.AttemptsLeft)
	}
}

func TestApply_AnswerResultAttemptsNeverNegative(t *testing.T) {
	cases := []struct {
		name         string
		event        protocol.AnswerResult
		wantAttempts int
		wantFeedback Feedback
	}{
		{
			name:         "wrong answer with explicit attempts",
			event:        protocol.AnswerResult{IsCorrect: false, AttemptsLeft: intp(1)},
			wantAttempts: 1,
			wantFeedback: FeedbackIncorrect,
		},
		{
			name:         "wrong answer with absent attempts",
			event:        protocol.AnswerResult{IsCorrect: false},
			wantAttempts: 0,
			wantFeedback: FeedbackIncorrect,
		},
		{
			name:         "wrong answer with negative attempts clamps to zero",
			event:        protocol.AnswerResult{IsCorrect: false, AttemptsLeft: intp(-2)},
			wantAttempts: 0,
			wantFeedback: FeedbackIncorrect,
		},
		{
			name:         "correct answer keeps attempts",
			event:        protocol.AnswerResult{IsCorrect: true},
			wantAttempts: 3,
			wantFeedback: FeedbackCorrect,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Apply(activeState(), tc.event)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if s.AttemptsLeft != tc.wantAttempts {
				t.Fatalf("want attempts=%d, got %d", tc.wantAttempts, s.AttemptsLeft)
			}
			if s.AttemptsLeft < 0 {
				t.Fatalf("attemptsLeft went negative: %d", s.AttemptsLeft)
			}
			if s.Feedback != tc.wantFeedback {
				t.Fatalf("want feedback=%q, got %q", tc.wantFeedback, s.Feedback)
			}
			if s.TaskNumber != 1 {
				t.Fatalf("answer_result must not advance taskNumber, got %d", s.TaskNumber)
			}
		})
	}
}

func TestApply_AnswerResultRevealsCorrectAnswer(t *testing.T) {
	s, err := Apply(activeState(), protocol.AnswerResult{IsCorrect: false, AttemptsLeft: intp(0), CorrectAnswer: "4"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.CorrectAnswer != "4" {
		t.Fatalf("want revealed answer, got %q", s.CorrectAnswer)
	}
}

func TestApply_AttemptsExhausted(t *testing.T) {
	s, err := Apply(activeState(), protocol.AttemptsExhausted{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.AttemptsLeft != 0 || s.Feedback != FeedbackIncorrect {
		t.Fatalf("want attempts=0/incorrect, got %d/%q", s.AttemptsLeft, s.Feedback)
	}
}

func TestApply_MatchUpdateIsOnlyTimerScoreWriter(t *testing.T) {
	s := activeState()

	s, err := Apply(s, protocol.MatchUpdate{Timer: 123, Scores: map[int]int{1: 2, 2: 1}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Timer != 123 || s.Scores[1] != 2 || s.Scores[2] != 1 {
		t.Fatalf("match_update not applied: timer=%d scores=%+v", s.Timer, s.Scores)
	}

	// Events that carry no timer/score data leave both alone.
	s, err = Apply(s, protocol.OpponentProgress{OpponentAnswered: true, OpponentScore: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Timer != 123 || s.Scores[1] != 2 {
		t.Fatalf("timer/scores changed by opponent_progress: %+v", s)
	}
}

func TestApply_DuplicateGameFinishedIsIgnored(t *testing.T) {
	s := activeState()

	s, err := Apply(s, protocol.GameFinished{Scores: map[int]int{1: 3, 2: 2}, WinnerID: intp(1)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Phase != PhaseFinished || s.Result == nil {
		t.Fatalf("terminal event not applied: %+v", s)
	}

	if _, err := Apply(s, protocol.GameFinished{Scores: map[int]int{1: 0, 2: 9}, WinnerID: intp(2)}); !errors.Is(err, ErrDuplicateTerminal) {
		t.Fatalf("want ErrDuplicateTerminal, got %v", err)
	}
	if *s.Result.WinnerID != 1 || s.Result.Scores[1] != 3 {
		t.Fatalf("stored result was altered: %+v", s.Result)
	}
}

func TestApply_LateGameFinishedAfterLeaveIsIgnored(t *testing.T) {
	// leave_game resets locally; the server's terminal may still arrive.
	s := NewState()

	_, err := Apply(s, protocol.GameFinished{Scores: map[int]int{1: 3}, WinnerID: intp(1)})
	if !errors.Is(err, ErrPhaseMismatch) {
		t.Fatalf("want ErrPhaseMismatch for terminal while idle, got %v", err)
	}
}

func TestApply_UnknownEventIsANoOp(t *testing.T) {
	before := activeState()
	after, err := Apply(before, protocol.Unknown{Type: "score_update"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if after.Phase != before.Phase || after.Timer != before.Timer {
		t.Fatalf("unknown event mutated state: %+v", after)
	}
}

func TestApply_GameCancelledCarriesReason(t *testing.T) {
	s, err := Apply(activeState(), protocol.GameCancelled{Reason: "opponent disconnected before start"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Notice != "opponent disconnected before start" {
		t.Fatalf("reason not surfaced: %q", s.Notice)
	}
}

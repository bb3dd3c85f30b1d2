package engine

import (
	"errors"

	"github.com/avelichko/quizduel-client/internal/protocol"
)

var ErrPhaseMismatch = errors.New("event does not apply to current phase")
var ErrDuplicateTerminal = errors.New("match already finished")

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseQueued      Phase = "queued"
	PhaseRoomPending Phase = "room_pending"
	PhaseCountdown   Phase = "countdown"
	PhaseActive      Phase = "active"
	PhaseFinished    Phase = "finished"
)

type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// Result is the terminal payload of one match.
type Result struct {
	Scores               map[int]int
	RatingChanges        map[int]int
	WinnerID             *int
	DisconnectedPlayerID *int
}

// State is the authoritative duel state. Timer, scores and attempts are
// only ever written from inbound server events; nothing here is
// decremented or accumulated locally.
type State struct {
	Phase            Phase
	RoomCode         string
	Countdown        int
	TaskNumber       int
	TotalTasks       int
	Timer            int
	Scores           map[int]int
	AttemptsLeft     int
	CurrentTask      *protocol.Task
	CorrectAnswer    string
	OpponentAnswered bool
	OpponentScore    int
	Feedback         Feedback
	Notice           string
	Result           *Result
}

func NewState() State {
	return State{Phase: PhaseIdle}
}

// pre-active phases that a countdown may interrupt
func preActive(p Phase) bool {
	return p == PhaseIdle || p == PhaseQueued || p == PhaseRoomPending || p == PhaseCountdown
}

// Apply folds one server event into the state. A returned error means
// the event does not apply to the current phase; the caller keeps the
// prior state. Unknown events pass through untouched.
func Apply(s State, ev protocol.Event) (State, error) {
	newState := s

	switch ev := ev.(type) {
	case protocol.Status:
		switch ev.Status {
		case "searching":
			if s.Phase != PhaseIdle {
				return s, ErrPhaseMismatch
			}
			newState.Phase = PhaseQueued
			newState.Notice = ""
			return newState, nil
		case "idle":
			// Queue or room dissolved server-side.
			switch s.Phase {
			case PhaseIdle:
				return s, nil
			case PhaseQueued, PhaseRoomPending:
				return NewState(), nil
			default:
				return s, ErrPhaseMismatch
			}
		default:
			return s, nil
		}

	case protocol.RoomCreated:
		if s.Phase != PhaseIdle && s.Phase != PhaseQueued {
			return s, ErrPhaseMismatch
		}
		newState = NewState()
		newState.Phase = PhaseRoomPending
		newState.RoomCode = ev.RoomCode
		return newState, nil

	case protocol.Countdown:
		if !preActive(s.Phase) {
			return s, ErrPhaseMismatch
		}
		newState.Phase = PhaseCountdown
		newState.Countdown = ev.Value
		return newState, nil

	case protocol.GameStart:
		switch s.Phase {
		case PhaseQueued, PhaseRoomPending, PhaseCountdown:
		default:
			return s, ErrPhaseMismatch
		}
		task := ev.CurrentTask
		newState = NewState()
		newState.Phase = PhaseActive
		newState.TaskNumber = 1
		newState.TotalTasks = ev.TotalTasks
		newState.Timer = ev.Timer
		newState.AttemptsLeft = ev.AttemptsLeft
		newState.CurrentTask = &task
		newState.Scores = map[int]int{}
		return newState, nil

	case protocol.NextTask:
		if s.Phase != PhaseActive {
			return s, ErrPhaseMismatch
		}
		task := ev.CurrentTask
		newState.TaskNumber = s.TaskNumber + 1
		newState.CurrentTask = &task
		newState.AttemptsLeft = ev.AttemptsLeft
		newState.OpponentAnswered = false
		newState.Feedback = FeedbackNone
		newState.CorrectAnswer = ""
		return newState, nil

	case protocol.OpponentProgress:
		if s.Phase != PhaseActive {
			return s, ErrPhaseMismatch
		}
		newState.OpponentAnswered = ev.OpponentAnswered
		newState.OpponentScore = ev.OpponentScore
		return newState, nil

	case protocol.MatchUpdate:
		if s.Phase != PhaseActive {
			return s, ErrPhaseMismatch
		}
		newState.Timer = ev.Timer
		if ev.Scores != nil {
			newState.Scores = ev.Scores
		}
		return newState, nil

	case protocol.AnswerResult:
		if s.Phase != PhaseActive {
			return s, ErrPhaseMismatch
		}
		if ev.IsCorrect {
			newState.Feedback = FeedbackCorrect
		} else {
			newState.Feedback = FeedbackIncorrect
			if ev.AttemptsLeft != nil && *ev.AttemptsLeft >= 0 {
				newState.AttemptsLeft = *ev.AttemptsLeft
			} else {
				newState.AttemptsLeft = 0
			}
		}
		if ev.CorrectAnswer != "" {
			newState.CorrectAnswer = ev.CorrectAnswer
		}
		return newState, nil

	case protocol.AttemptsExhausted:
		if s.Phase != PhaseActive {
			return s, ErrPhaseMismatch
		}
		newState.Feedback = FeedbackIncorrect
		newState.AttemptsLeft = 0
		return newState, nil

	case protocol.GameFinished:
		switch s.Phase {
		case PhaseFinished:
			// One terminal message ends a match; duplicates are noise.
			return s, ErrDuplicateTerminal
		case PhaseIdle:
			// Late terminal after a local leave_game reset.
			return s, ErrPhaseMismatch
		}
		newState.Phase = PhaseFinished
		newState.Result = &Result{
			Scores:               ev.Scores,
			RatingChanges:        ev.RatingChanges,
			WinnerID:             ev.WinnerID,
			DisconnectedPlayerID: ev.DisconnectedPlayerID,
		}
		if ev.Scores != nil {
			newState.Scores = ev.Scores
		}
		return newState, nil

	case protocol.GameCancelled:
		newState = NewState()
		newState.Notice = ev.Reason
		return newState, nil

	case protocol.ServerError:
		// Recoverable within the channel: pre-active and active phases
		// fall back to idle, everything else just surfaces the message.
		switch s.Phase {
		case PhaseQueued, PhaseRoomPending, PhaseCountdown, PhaseActive:
			newState = NewState()
		}
		newState.Notice = ev.Message
		return newState, nil

	case protocol.Unknown:
		return s, nil

	default:
		return s, nil
	}
}

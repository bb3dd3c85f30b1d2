package protocol

import (
	"encoding/json"
	"fmt"
)

// Task is the question payload carried by game_start and next_task.
// CorrectAnswer is only ever populated by the server on a reveal.
type Task struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Event is the closed set of server -> client messages, selected by the
// "type" field on the wire. Decoding never fails on an unrecognized
// type: those come back as Unknown so the protocol can grow without
// breaking older clients.
type Event interface{ isEvent() }

type Status struct {
	Status string `json:"status"` // "searching" | "idle"
}

type RoomCreated struct {
	RoomCode string `json:"room_code"`
}

type Countdown struct {
	Value int `json:"value"`
}

type GameStart struct {
	CurrentTask  Task `json:"current_task"`
	TotalTasks   int  `json:"total_tasks"`
	Timer        int  `json:"timer"`
	AttemptsLeft int  `json:"attempts_left"`
}

type NextTask struct {
	CurrentTask  Task `json:"current_task"`
	AttemptsLeft int  `json:"attempts_left"`
}

type OpponentProgress struct {
	OpponentAnswered bool `json:"opponent_answered"`
	OpponentScore    int  `json:"opponent_score"`
}

type MatchUpdate struct {
	Timer  int         `json:"timer"`
	Scores map[int]int `json:"scores"`
}

type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	AttemptsLeft  *int   `json:"attempts_left,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

type AttemptsExhausted struct{}

type GameFinished struct {
	Scores               map[int]int `json:"scores"`
	RatingChanges        map[int]int `json:"rating_changes"`
	WinnerID             *int        `json:"winner_id,omitempty"`
	DisconnectedPlayerID *int        `json:"disconnected_player_id,omitempty"`
}

type GameCancelled struct {
	Reason string `json:"reason"`
}

type ServerError struct {
	Message string `json:"message"`
}

// Unknown preserves a frame whose type tag we don't recognize.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Status) isEvent()            {}
func (RoomCreated) isEvent()       {}
func (Countdown) isEvent()         {}
func (GameStart) isEvent()         {}
func (NextTask) isEvent()          {}
func (OpponentProgress) isEvent()  {}
func (MatchUpdate) isEvent()       {}
func (AnswerResult) isEvent()      {}
func (AttemptsExhausted) isEvent() {}
func (GameFinished) isEvent()      {}
func (GameCancelled) isEvent()     {}
func (ServerError) isEvent()       {}
func (Unknown) isEvent()           {}

// DecodeEvent parses one inbound frame. It returns an error only for
// malformed JSON; a well-formed frame with an unrecognized type decodes
// to Unknown.
func DecodeEvent(data []byte) (Event, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	switch probe.Type {
	case "status":
		var ev Status
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode status: %w", err)
		}
		return ev, nil
	case "room_created":
		var ev RoomCreated
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode room_created: %w", err)
		}
		return ev, nil
	case "countdown":
		var ev Countdown
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode countdown: %w", err)
		}
		return ev, nil
	case "game_start":
		var ev GameStart
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode game_start: %w", err)
		}
		return ev, nil
	case "next_task":
		var ev NextTask
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode next_task: %w", err)
		}
		return ev, nil
	case "opponent_progress":
		var ev OpponentProgress
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode opponent_progress: %w", err)
		}
		return ev, nil
	case "match_update":
		var ev MatchUpdate
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode match_update: %w", err)
		}
		return ev, nil
	case "answer_result":
		var ev AnswerResult
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode answer_result: %w", err)
		}
		return ev, nil
	case "attempts_exhausted":
		return AttemptsExhausted{}, nil
	case "game_finished":
		var ev GameFinished
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode game_finished: %w", err)
		}
		return ev, nil
	case "game_cancelled":
		var ev GameCancelled
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode game_cancelled: %w", err)
		}
		return ev, nil
	case "error":
		var ev ServerError
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode error: %w", err)
		}
		return ev, nil
	default:
		return Unknown{Type: probe.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

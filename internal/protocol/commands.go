package protocol

import (
	"encoding/json"
	"errors"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is the closed set of client -> server messages. Each variant
// marshals to a JSON envelope selected by the "action" field.
type Command interface{ isCommand() }

type FindMatch struct {
	TopicID       *int
	TaskCount     int
	MatchDuration int
}

type CreateRoom struct {
	TopicID       *int
	TaskCount     int
	MatchDuration int
}

type JoinRoom struct {
	Code string
}

type CancelSearch struct{}

type LeaveGame struct{}

type SubmitAnswer struct {
	Answer string
}

func (FindMatch) isCommand()    {}
func (CreateRoom) isCommand()   {}
func (JoinRoom) isCommand()     {}
func (CancelSearch) isCommand() {}
func (LeaveGame) isCommand()    {}
func (SubmitAnswer) isCommand() {}

type matchParams struct {
	Action        string `json:"action"`
	TopicID       *int   `json:"topic_id"`
	TaskCount     int    `json:"task_count"`
	MatchDuration int    `json:"match_duration"`
}

// EncodeCommand renders one command as a single JSON frame.
func EncodeCommand(c Command) ([]byte, error) {
	switch cmd := c.(type) {
	case FindMatch:
		return json.Marshal(matchParams{
			Action:        "find_match",
			TopicID:       cmd.TopicID,
			TaskCount:     cmd.TaskCount,
			MatchDuration: cmd.MatchDuration,
		})
	case CreateRoom:
		return json.Marshal(matchParams{
			Action:        "create_room",
			TopicID:       cmd.TopicID,
			TaskCount:     cmd.TaskCount,
			MatchDuration: cmd.MatchDuration,
		})
	case JoinRoom:
		return json.Marshal(struct {
			Action string `json:"action"`
			Code   string `json:"code"`
		}{Action: "join_room", Code: cmd.Code})
	case CancelSearch:
		return json.Marshal(struct {
			Action string `json:"action"`
		}{Action: "cancel_search"})
	case LeaveGame:
		return json.Marshal(struct {
			Action string `json:"action"`
		}{Action: "leave_game"})
	case SubmitAnswer:
		return json.Marshal(struct {
			Action string `json:"action"`
			Answer string `json:"answer"`
		}{Action: "submit_answer", Answer: cmd.Answer})
	default:
		return nil, ErrUnknownCommand
	}
}

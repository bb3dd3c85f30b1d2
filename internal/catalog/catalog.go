// Package catalog resolves and validates duel configuration before a
// match request ever reaches the wire.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// MaxTasksCeiling caps a duel regardless of how many tasks the
// inventory reports.
const MaxTasksCeiling = 10

const (
	MinMatchDuration = 60
	MaxMatchDuration = 1800
)

// Inventory is the collaborator that knows the task bank, satisfied by
// *restapi.Client.
type Inventory interface {
	TaskCount(ctx context.Context, topicID *int) (int, error)
}

// MatchConfig is a duel request as the user shaped it. Resolve clamps
// and validates it into something the server will accept.
type MatchConfig struct {
	TopicID       *int
	TaskCount     int
	MatchDuration int
}

// ValidationError is a locally recovered configuration fault; it never
// turns into a network request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Resolver struct {
	inv Inventory
	log *zap.Logger
}

func NewResolver(inv Inventory, log *zap.Logger) *Resolver {
	return &Resolver{inv: inv, log: log}
}

// ResolveMaxTasks asks the inventory how many tasks exist for the
// topic filter and clamps to the ceiling. An inventory failure falls
// back to the ceiling rather than blocking the lobby.
func (r *Resolver) ResolveMaxTasks(ctx context.Context, topicID *int) int {
	total, err := r.inv.TaskCount(ctx, topicID)
	if err != nil {
		r.log.Warn("task inventory lookup failed, assuming ceiling", zap.Error(err))
		return MaxTasksCeiling
	}
	if total > MaxTasksCeiling {
		return MaxTasksCeiling
	}
	if total < 1 {
		return 1
	}
	return total
}

// Resolve clamps the task count into [1, max for topic] and validates
// the match duration.
func (r *Resolver) Resolve(ctx context.Context, cfg MatchConfig) (MatchConfig, error) {
	maxTasks := r.ResolveMaxTasks(ctx, cfg.TopicID)

	out := cfg
	if out.TaskCount > maxTasks {
		out.TaskCount = maxTasks
	}
	if out.TaskCount < 1 {
		out.TaskCount = 1
	}

	if err := validateDuration(out.MatchDuration); err != nil {
		return MatchConfig{}, err
	}
	return out, nil
}

func validateDuration(seconds int) error {
	if seconds < MinMatchDuration || seconds > MaxMatchDuration {
		return &ValidationError{
			Field:   "match_duration",
			Message: fmt.Sprintf("must be between %d and %d seconds", MinMatchDuration, MaxMatchDuration),
		}
	}
	return nil
}

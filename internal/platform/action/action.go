// Package action runs form submissions through validate, persist,
// revalidate and redirect, reporting failures as data the form can render.
package action

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	OpCreate = "Create"
	OpUpdate = "Update"
	OpDelete = "Delete"
)

// State is what a form re-renders with after a failed submission.
type State struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// AddError appends msg to field's errors.
func (s *State) AddError(field, msg string) {
	if s.Errors == nil {
		s.Errors = make(map[string][]string)
	}
	s.Errors[field] = append(s.Errors[field], msg)
}

func (s State) HasErrors() bool {
	return len(s.Errors) > 0
}

// Result classifies how an action ended.
type Result int

const (
	Succeeded Result = iota
	// Invalid means validation failed and nothing was written.
	Invalid
	// Failed means the write was attempted and the store rejected it.
	Failed
)

// Outcome is the result of one action. Redirect is set only when a create or
// update succeeded.
type Outcome struct {
	Result   Result
	State    State
	Redirect string
}

func (o Outcome) OK() bool {
	return o.Result == Succeeded
}

// Rejected builds a validation failure carrying the field errors in state.
func Rejected(state State, op, entity string) Outcome {
	state.Message = MissingFields(op, entity)
	return Outcome{Result: Invalid, State: state}
}

func MissingFields(op, entity string) string {
	return fmt.Sprintf(".Missing Fields. Failed to %s %s", op, entity)
}

func DatabaseError(op, entity string) string {
	return fmt.Sprintf(".Database Error: Failed to %s %s", op, entity)
}

func Deleted(entity string) string {
	return fmt.Sprintf("Deleted %s.", entity)
}

// Revalidator drops cached renders of paths after a write. A path built with
// Subtree also covers every route below it.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

// SubtreeSuffix marks a revalidation path that covers all descendants.
const SubtreeSuffix = "/*"

// Subtree names every route under path, such as the per-id edit pages below
// a list. The list itself is not included.
func Subtree(path string) string {
	return path + SubtreeSuffix
}

// NopRevalidator is used when view caching is disabled.
type NopRevalidator struct{}

func (NopRevalidator) Revalidate(context.Context, ...string) {}

// Pipeline performs the persist, revalidate and redirect steps shared by all
// entity actions. Validation happens in the caller, which knows the schema.
type Pipeline struct {
	logger      zerolog.Logger
	revalidator Revalidator
}

func NewPipeline(logger zerolog.Logger, revalidator Revalidator) *Pipeline {
	if revalidator == nil {
		revalidator = NopRevalidator{}
	}
	return &Pipeline{logger: logger, revalidator: revalidator}
}

// Commit runs write once. On failure the error is logged with full detail and
// the caller gets the generic database message. On success every path in
// stale is revalidated and the outcome redirects to redirect.
func (p *Pipeline) Commit(ctx context.Context, op, entity string, write func(context.Context) error, redirect string, stale ...string) Outcome {
	if err := write(ctx); err != nil {
		p.logger.Error().Err(err).Str("entity", entity).Str("op", op).Msg("database error")
		return Outcome{Result: Failed, State: State{Message: DatabaseError(op, entity)}}
	}
	p.revalidator.Revalidate(ctx, stale...)
	return Outcome{Result: Succeeded, Redirect: redirect}
}

// Delete runs remove once and reports the result as a message; deletes happen
// in place from a list row, so there is no redirect.
func (p *Pipeline) Delete(ctx context.Context, entity string, remove func(context.Context) error, stale ...string) Outcome {
	if err := remove(ctx); err != nil {
		p.logger.Error().Err(err).Str("entity", entity).Str("op", OpDelete).Msg("database error")
		return Outcome{Result: Failed, State: State{Message: DatabaseError(OpDelete, entity)}}
	}
	p.revalidator.Revalidate(ctx, stale...)
	return Outcome{Result: Succeeded, State: State{Message: Deleted(entity)}}
}

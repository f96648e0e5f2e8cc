package services

import (
	"errors"
	"fmt"
)

var (
	ErrClassNotFound       = errors.New("class not found")
	ErrAlreadyBooked       = errors.New("already booked for this class")
	ErrClassFull           = errors.New("class is full")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrCompetitionFull     = errors.New("competition is full")
	ErrInvalidNationalID   = errors.New("invalid national id")
	ErrReportNotFound      = errors.New("payment report not found")
	ErrAlreadyReviewed     = errors.New("payment report already reviewed")
)

// TeamSizeError reports a leader+members count that does not match the
// competition's configured team size.
type TeamSizeError struct {
	Want, Got int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("team must have %d members including the leader, got %d", e.Want, e.Got)
}

// IdentityConflictError names the identity that is already registered, so the
// caller can show the user exactly which entry collided.
type IdentityConflictError struct {
	Kind  string // "user" | "national_id"
	Value string // the colliding national id; empty for Kind "user"
}

func (e *IdentityConflictError) Error() string {
	if e.Kind == "national_id" {
		return fmt.Sprintf("national id %s is already registered for this competition", e.Value)
	}
	return "this account is already registered for this competition"
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// Validation limits for task fields.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MaxDescriptionLength = 250
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          ulid.ULID
	Title       string
	Description *string // nil when the task has no description
	Completed   bool
	OwnerID     ulid.ULID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a validated Task for the given owner. Completed always
// starts false; the only way to set it is ToggleCompletion.
func New(ownerID ulid.ULID, title string, description *string) (*Task, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Task{
		ID:          ulid.Make(),
		Title:       title,
		Description: description,
		Completed:   false,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateTitle checks that a title is within 3-100 characters and valid
// UTF-8. Bounds count Unicode characters, not bytes, so non-ASCII titles
// get the full budget.
func ValidateTitle(title string) error {
	if !utf8.ValidString(title) {
		return &ValidationError{Field: "title", Message: "must be valid UTF-8"}
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at least %d characters", MinTitleLength)}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// ValidateDescription checks that a description, when present, fits the limit.
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}
	if !utf8.ValidString(*description) {
		return &ValidationError{Field: "description", Message: "must be valid UTF-8"}
	}
	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)}
	}
	return nil
}

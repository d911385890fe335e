package repository

import (
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("record not found")

// ConflictError reports an insert rejected by a unique index. Constraint is
// the index name, e.g. "stripeSessionId_1".
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	if e.Constraint == "" {
		return "unique constraint violation"
	}
	return fmt.Sprintf("unique constraint violation on %s", e.Constraint)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsConflictOn reports whether err is a ConflictError for constraint.
func IsConflictOn(err error, constraint string) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict) && conflict.Constraint == constraint
}

var dupKeyIndexPattern = regexp.MustCompile(`index:\s+(\S+)\s+dup key`)

// translateWriteError turns duplicate key failures into *ConflictError and
// passes every other error through unchanged.
func translateWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &ConflictError{Constraint: duplicateKeyIndex(err), Err: err}
}

func duplicateKeyIndex(err error) string {
	var messages []string

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			messages = append(messages, e.Message)
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		messages = append(messages, ce.Message)
	}
	messages = append(messages, err.Error())

	for _, msg := range messages {
		if m := dupKeyIndexPattern.FindStringSubmatch(msg); m != nil {
			return m[1]
		}
	}
	return ""
}

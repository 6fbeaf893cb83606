package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// PostgreSQL SQLSTATE codes recognised by Classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeInvalidTextRepr     = "22P02"
)

// Classify maps driver errors onto the application error taxonomy. Errors it does not
// recognise are returned unchanged so callers can wrap them as persistence failures.
func Classify(err error) error {
	var pgErr *pq.Error
	if !errors.As(err, &pgErr) {
		return err
	}

	switch string(pgErr.Code) {
	case codeUniqueViolation:
		field := ConstraintField(pgErr.Table, pgErr.Constraint)
		message := "resource already exists"
		if field != "" {
			message = field + " already in use"
		}
		e := appErrors.WithField(appErrors.ErrAlreadyExists, field, message)
		e.Err = err
		return e
	case codeForeignKeyViolation:
		field := ConstraintField(pgErr.Table, pgErr.Constraint)
		e := appErrors.WithField(appErrors.ErrNotFound, field, "referenced record not found")
		e.Err = err
		return e
	case codeCheckViolation, codeNotNullViolation, codeInvalidTextRepr:
		e := appErrors.WithField(appErrors.ErrValidation, pgErr.Column, "value rejected by storage constraints")
		e.Err = err
		return e
	default:
		return err
	}
}

// ConstraintField derives the column name from a conventional constraint name such as
// users_email_key or reviews_application_id_fkey.
func ConstraintField(table, constraint string) string {
	if constraint == "" {
		return ""
	}
	field := constraint
	if table != "" {
		field = strings.TrimPrefix(field, table+"_")
	}
	for _, suffix := range []string{"_fkey", "_key", "_check", "_idx"} {
		if strings.HasSuffix(field, suffix) {
			field = strings.TrimSuffix(field, suffix)
			break
		}
	}
	return field
}

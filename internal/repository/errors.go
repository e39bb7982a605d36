package repository

import (
	"database/sql"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeRecordNotFound  = "RECORD_NOT_FOUND"
	TextCodeAmbiguousResult = "AMBIGUOUS_RESULT"
	TextCodeStorage         = "STORAGE_UNAVAILABLE"
)

var ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeRecordNotFound).
	WithCode(errors.CodeNotFound)

var ErrAmbiguousResult = errors.New("filter matched more than one record", errors.CategoryOperation).
	WithTextCode(TextCodeAmbiguousResult).
	WithCode(errors.CodeBadRequest)

func NewRecordNotFound(filter Filter) *errors.Error {
	return ErrRecordNotFound.Clone().WithMetadata(map[string]any{
		"filter": filter.String(),
	})
}

func NewAmbiguousResult(filter Filter) *errors.Error {
	return ErrAmbiguousResult.Clone().WithMetadata(map[string]any{
		"filter": filter.String(),
	})
}

func IsRecordNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == TextCodeRecordNotFound
}

func IsAmbiguousResult(err error) bool {
	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == TextCodeAmbiguousResult
}

func wrapStorage(err error, op string) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, "storage operation failed: "+op).
		WithTextCode(TextCodeStorage).
		WithCode(errors.CodeInternal)
}

package services

import (
	apperrors "sheetcli/internal/errors"
)

// Session errors
var (
	// ErrNoTable is returned by operations that need a loaded table
	ErrNoTable = apperrors.NewAppError(apperrors.ErrTypeNotFound, "please load a spreadsheet first", nil)
)

func errUnknownColumn(name string) error {
	return apperrors.NewAppValidationError("unknown column: " + name).WithContext("column", name)
}

func errNoMatches(term string) error {
	return apperrors.NewEmptyResultError("no rows match \"" + term + "\"").WithContext("query", term)
}

// Package apperr defines the error kinds the HTTP layer knows how to render.
package apperr

import (
	"errors"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
)

// FieldError describes one rejected input location, e.g. ["body", "name"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return e.Msg + ": " + strings.Join(parts, "; ")
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"userpost-service/internal/shared/apperr"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Wrap adapts an error-returning handler. Validation errors render as 422,
// not-found as 404 and anything else as an opaque 500.
func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, err)
		}
	})
}

func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			WriteJSON(w, map[string]any{"detail": ae.Fields}, http.StatusUnprocessableEntity)
			return
		case apperr.KindNotFound:
			WriteJSON(w, map[string]any{"detail": ae.Msg}, http.StatusNotFound)
			return
		}
	}
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "err", err)
	WriteJSON(w, map[string]any{"detail": "Internal Server Error"}, http.StatusInternalServerError)
}

// Decode reads a JSON body into T. Decoding problems are reported as
// validation errors so they never reach the store.
func Decode[T any](r *http.Request) (T, error) {
	var t T
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&t); err != nil {
		return t, decodeError(err)
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return t, invalidJSON()
	}
	return t, nil
}

func invalidJSON() error {
	return apperr.Validation(apperr.FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return apperr.Validation(apperr.FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"})
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		loc := []string{"body"}
		if ute.Field == "" {
			return apperr.Validation(apperr.FieldError{Loc: loc, Msg: "Input should be a valid object", Type: "model_type"})
		}
		loc = append(loc, strings.Split(ute.Field, ".")...)
		name, typ := typeName(ute.Type)
		return apperr.Validation(apperr.FieldError{Loc: loc, Msg: "Input should be a valid " + name, Type: typ})
	}
	return invalidJSON()
}

func typeName(t reflect.Type) (string, string) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "value", "type_error"
	}
	switch t.Kind() {
	case reflect.String:
		return "string", "string_type"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer", "int_type"
	case reflect.Bool:
		return "boolean", "bool_type"
	default:
		return t.String(), "type_error"
	}
}

// PathInt parses the named path segment as an integer.
func PathInt(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperr.Validation(apperr.FieldError{
			Loc:  []string{"path", name},
			Msg:  "Input should be a valid integer, unable to parse string as an integer",
			Type: "int_parsing",
		})
	}
	return n, nil
}

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

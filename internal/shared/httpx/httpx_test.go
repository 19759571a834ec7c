package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"userpost-service/internal/shared/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createReq struct {
	Name   *string `json:"name"`
	UserID *int64  `json:"user_id"`
}

func decodeBody(t *testing.T, body string) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	_, err := Decode[createReq](r)
	return err
}

func TestDecodeErrorsAreValidation(t *testing.T) {
	cases := map[string]struct {
		body string
		loc  []string
		typ  string
	}{
		"empty body":    {"", []string{"body"}, "missing"},
		"broken json":   {"{", []string{"body"}, "json_invalid"},
		"wrong type":    {`{"name": 5}`, []string{"body", "name"}, "string_type"},
		"string id":     {`{"user_id": "7"}`, []string{"body", "user_id"}, "int_type"},
		"float id":      {`{"user_id": 1.0}`, []string{"body", "user_id"}, "int_type"},
		"not a object":  {`[1, 2]`, []string{"body"}, "model_type"},
		"trailing data": {`{"name":"a"} garbage`, []string{"body"}, "json_invalid"},
		"two objects":   {`{"name":"a"}{"name":"b"}`, []string{"body"}, "json_invalid"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := decodeBody(t, tc.body)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			require.Len(t, ae.Fields, 1)
			assert.Equal(t, tc.loc, ae.Fields[0].Loc)
			assert.Equal(t, tc.typ, ae.Fields[0].Type)
		})
	}
}

func TestDecodeOK(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"name\":\"a\",\"user_id\":3}\n"))
	got, err := Decode[createReq](r)
	require.NoError(t, err)
	assert.Equal(t, "a", *got.Name)
	assert.EqualValues(t, 3, *got.UserID)
}

func TestWrapStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail any
	}{
		{apperr.NotFound("User not found"), http.StatusNotFound, "User not found"},
		{apperr.Validation(apperr.FieldError{Loc: []string{"body", "name"}, Msg: "Field required", Type: "missing"}),
			http.StatusUnprocessableEntity, []any{map[string]any{"loc": []any{"body", "name"}, "msg": "Field required", "type": "missing"}}},
		{errors.New("connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		h := Wrap(func(http.ResponseWriter, *http.Request) error { return tc.err })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, tc.status, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.detail, body["detail"])
	}
}

func TestPathInt(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	mux.Handle("GET /user/{id}", Wrap(func(w http.ResponseWriter, r *http.Request) error {
		n, err := PathInt(r, "id")
		if err != nil {
			return err
		}
		got = n
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/42", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 42, got)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/abc", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
}

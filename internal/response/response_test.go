package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-catalog/internal/repository"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   Op
		want int
	}{
		{"invalid id on lookup", repository.InvalidIdentifier("movie", "x"), Lookup, http.StatusBadRequest},
		{"invalid id on write", repository.InvalidIdentifier("movie", "x"), Write, http.StatusUnprocessableEntity},
		{"not found", repository.NotFound("movie"), Lookup, http.StatusNotFound},
		{"not found on write", repository.NotFound("movie"), Write, http.StatusNotFound},
		{"validation", repository.Validation("movie", "name: required"), Write, http.StatusUnprocessableEntity},
		{"store", repository.StoreFailure("movie", "find", errors.New("boom")), Lookup, http.StatusInternalServerError},
		{"untagged", errors.New("boom"), Lookup, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err, tt.op))
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFromErrorHidesStoreDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies", nil), rec)

	err := repository.StoreFailure("movie", "find movies", errors.New("mongo: server selection timeout 10.0.0.3"))
	require.NoError(t, FromError(c, err, Lookup))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, 500, env.Error.Code)
	assert.Equal(t, internalMessage, env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestFromErrorClientMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies/x", nil), rec)

	require.NoError(t, FromError(c, repository.NotFound("movie"), Lookup))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, 404, env.Error.Code)
	assert.Equal(t, "no matching movie found", env.Error.Message)
}

func TestNoContentCarriesMessageHeader(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/v1/movies/x", nil), rec)

	require.NoError(t, NoContent(c, "movie deleted"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "movie deleted", rec.Header().Get("X-Message"))
	assert.Empty(t, rec.Body.String())
}

func TestPageEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/movies", nil), rec)

	require.NoError(t, Page(c, Paged{Result: []int{1}, Total: 12, TotalPages: 3, CurrentPage: 2, Limit: 5}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, float64(12), got["total"])
	assert.Equal(t, float64(3), got["totalPages"])
	assert.Equal(t, float64(2), got["currentPage"])
	assert.Equal(t, float64(5), got["limit"])
}

package router

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-catalog/internal/config"
    "github.com/iliyamo/cinema-catalog/internal/handler"
    "github.com/iliyamo/cinema-catalog/internal/middleware"
    "github.com/iliyamo/cinema-catalog/internal/utils"
)

const secret = "router-secret"

// Requests below use a malformed movie id, so a request that clears the
// middleware chain is answered by the handler with 422 before any store is
// touched.
func newServer(t *testing.T) *echo.Echo {
    t.Helper()
    e := echo.New()
    mh := &handler.MovieHandler{Scheme: config.IDSchemeUID, Validator: handler.NewValidator()}
    gh := &handler.GenreHandler{Catalog: mh, Validator: mh.Validator}
    RegisterRoutes(e)
    RegisterCatalog(e, Deps{JWTSecret: secret, MediaDir: t.TempDir()}, mh, gh)
    return e
}

func token(t *testing.T, role string) string {
    t.Helper()
    at, err := utils.NewAccessToken(secret, "u1", role, 5)
    require.NoError(t, err)
    return at.Token
}

func call(e *echo.Echo, method, target, tok string) int {
    req := httptest.NewRequest(method, target, nil)
    if tok != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec.Code
}

func TestAdminRoutesAreGated(t *testing.T) {
    e := newServer(t)
    admin, customer := token(t, middleware.RoleAdmin), token(t, middleware.RoleCustomer)

    for _, r := range []struct{ method, target string }{
        {http.MethodPut, "/v1/movies/bad"},
        {http.MethodPatch, "/v1/movies/bad"},
        {http.MethodDelete, "/v1/movies/bad"},
        {http.MethodPost, "/v1/movies/bad/upload"},
        {http.MethodDelete, "/v1/genres/bad"},
    } {
        name := r.method + " " + r.target
        assert.Equal(t, http.StatusUnauthorized, call(e, r.method, r.target, ""), name)
        assert.Equal(t, http.StatusForbidden, call(e, r.method, r.target, customer), name)
        assert.Equal(t, http.StatusUnprocessableEntity, call(e, r.method, r.target, admin), name)
    }
}

func TestReservationNeedsAnyToken(t *testing.T) {
    e := newServer(t)

    assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/v1/movies/bad/reservations", ""))
    assert.Equal(t, http.StatusUnprocessableEntity, call(e, http.MethodPost, "/v1/movies/bad/reservations", token(t, middleware.RoleCustomer)))
    assert.Equal(t, http.StatusUnprocessableEntity, call(e, http.MethodPost, "/v1/movies/bad/reservations", token(t, middleware.RoleAdmin)))
}

func TestPublicRoutes(t *testing.T) {
    e := newServer(t)

    assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", ""))
    assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/v1/movies/bad", ""))
    assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/v1/movies/bad/seances", ""))
    assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/v1/genres/bad", ""))
    assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/v1/unknown", ""))
}

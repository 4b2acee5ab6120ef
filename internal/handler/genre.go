package handler

import (
    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "go.mongodb.org/mongo-driver/v2/bson"

    "github.com/iliyamo/cinema-catalog/internal/model"
    "github.com/iliyamo/cinema-catalog/internal/repository"
    "github.com/iliyamo/cinema-catalog/internal/response"
)

const genreEntity = "genre"

// GenreHandler serves /v1/genres.  Genre ids are always ObjectIDs; the
// movies of a genre use the movie handler's identifier scheme.
type GenreHandler struct {
    Genres    GenreStore
    Catalog   *MovieHandler
    Validator *validator.Validate
}

func genreID(c echo.Context) (bson.ObjectID, error) {
    return repository.ParseObjectID(genreEntity, c.Param("id"))
}

// List handles GET /v1/genres.  The full set, unpaginated.
func (h *GenreHandler) List(c echo.Context) error {
    genres, err := h.Genres.List(c.Request().Context())
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    if genres == nil {
        genres = []model.Genre{}
    }
    return response.OK(c, genres)
}

// Get handles GET /v1/genres/:id.
func (h *GenreHandler) Get(c echo.Context) error {
    id, err := genreID(c)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    g, err := h.Genres.FindByID(c.Request().Context(), id)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    return response.OK(c, g)
}

// Movies handles GET /v1/genres/:id/movies: every movie whose categoryId is
// the genre, with availability.
func (h *GenreHandler) Movies(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := genreID(c)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    if _, err := h.Genres.FindByID(ctx, id); err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    movies, err := h.Catalog.Movies.List(ctx, repository.MovieFilter{CategoryID: id.Hex()}, repository.Page{})
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    return response.OK(c, h.Catalog.Availability.Compose(ctx, movies, h.Catalog.idOf))
}

// Create handles POST /v1/genres.
func (h *GenreHandler) Create(c echo.Context) error {
    var req model.GenreRequest
    if err := bindAndValidate(c, h.Validator, genreEntity, &req); err != nil {
        return response.FromError(c, err, response.Write)
    }
    g, err := h.Genres.Create(c.Request().Context(), req)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.Created(c, g)
}

// Update handles PUT and PATCH /v1/genres/:id.
func (h *GenreHandler) Update(c echo.Context) error {
    id, err := genreID(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    var req model.GenreRequest
    if err := bindAndValidate(c, h.Validator, genreEntity, &req); err != nil {
        return response.FromError(c, err, response.Write)
    }
    g, err := h.Genres.Rename(c.Request().Context(), id, req.Name)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.OK(c, g)
}

// Delete handles DELETE /v1/genres/:id.
func (h *GenreHandler) Delete(c echo.Context) error {
    id, err := genreID(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    if err := h.Genres.Delete(c.Request().Context(), id); err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.NoContent(c, "genre deleted")
}

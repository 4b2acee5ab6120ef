package handler

import (
    "context"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/pkg/errors"

    "github.com/iliyamo/cinema-catalog/internal/config"
    "github.com/iliyamo/cinema-catalog/internal/middleware"
    "github.com/iliyamo/cinema-catalog/internal/model"
    q "github.com/iliyamo/cinema-catalog/internal/queue"
    "github.com/iliyamo/cinema-catalog/internal/repository"
    "github.com/iliyamo/cinema-catalog/internal/response"
    "github.com/iliyamo/cinema-catalog/internal/service"
)

const movieEntity = "movie"

// MovieHandler serves /v1/movies.  Scheme selects the identifier space of
// :id and of the "id" field in responses.
type MovieHandler struct {
    Scheme         string
    Movies         MovieStore
    Genres         GenreStore
    Availability   *service.Availability
    Blobs          BlobStore
    Publisher      ReservationPublisher
    Validator      *validator.Validate
    MaxUploadBytes int64
}

// idOf returns the identifier of m exposed by this instance.
func (h *MovieHandler) idOf(m model.Movie) string {
    if h.Scheme == config.IDSchemeObjectID {
        return m.ID.Hex()
    }
    return m.UID
}

func (h *MovieHandler) ref(c echo.Context) (repository.MovieRef, error) {
    return repository.ParseMovieRef(h.Scheme, c.Param("id"))
}

// movieFilter builds the listing filter from the query string.  A genre name
// that matches nothing fails the whole listing with KindNotFound.
func (h *MovieHandler) movieFilter(ctx context.Context, c echo.Context) (repository.MovieFilter, error) {
    kw := strings.TrimSpace(c.QueryParam("keyword"))
    if kw == "" {
        kw = strings.TrimSpace(c.QueryParam("query"))
    }
    f := repository.MovieFilter{Keyword: kw}
    if name := strings.TrimSpace(c.QueryParam("genre")); name != "" {
        g, err := h.Genres.FindByNameLike(ctx, name)
        if err != nil {
            return f, err
        }
        f.CategoryID = g.ID.Hex()
    }
    return f, nil
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
    ctx := c.Request().Context()
    f, err := h.movieFilter(ctx, c)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    page := repository.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))

    total, err := h.Movies.Count(ctx, f)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    if total == 0 && f.IsSearch() {
        return response.NoContent(c, "no movies match the search")
    }
    movies, err := h.Movies.List(ctx, f, page)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    return response.Page(c, response.Paged{
        Result:      h.Availability.Compose(ctx, movies, h.idOf),
        Total:       total,
        TotalPages:  page.TotalPages(total),
        CurrentPage: page.Number,
        Limit:       page.Limit,
    })
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
    ctx := c.Request().Context()
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    m, err := h.Movies.FindByRef(ctx, ref)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    return response.OK(c, h.Availability.ComposeOne(ctx, *m, h.idOf))
}

// Create handles POST /v1/movies.  The uid is assigned by the store.
func (h *MovieHandler) Create(c echo.Context) error {
    ctx := c.Request().Context()
    var req model.CreateMovieRequest
    if err := bindAndValidate(c, h.Validator, movieEntity, &req); err != nil {
        return response.FromError(c, err, response.Write)
    }
    m, err := h.Movies.Create(ctx, req)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.Created(c, h.Availability.ComposeOne(ctx, *m, h.idOf))
}

// Update handles PUT and PATCH /v1/movies/:id.  Only fields present in the
// body change.
func (h *MovieHandler) Update(c echo.Context) error {
    ctx := c.Request().Context()
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    var req model.UpdateMovieRequest
    if err := bindAndValidate(c, h.Validator, movieEntity, &req); err != nil {
        return response.FromError(c, err, response.Write)
    }
    if len(req.Fields()) == 0 {
        return response.FromError(c, repository.Validation(movieEntity, "no fields to update"), response.Write)
    }
    m, err := h.Movies.Update(ctx, ref, req)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.OK(c, h.Availability.ComposeOne(ctx, *m, h.idOf))
}

// Delete handles DELETE /v1/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    if err := h.Movies.Delete(c.Request().Context(), ref); err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.NoContent(c, "movie deleted")
}

// Upload handles POST /v1/movies/:id/upload.  The movie is resolved before
// anything is written to the blob store.
func (h *MovieHandler) Upload(c echo.Context) error {
    ctx := c.Request().Context()
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    if _, err := h.Movies.FindByRef(ctx, ref); err != nil {
        return response.FromError(c, err, response.Write)
    }

    fh, err := c.FormFile("file")
    if err != nil {
        return response.FromError(c, repository.Validation(movieEntity, "file: required"), response.Write)
    }
    if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
        return response.FromError(c, repository.Validation(movieEntity, "file: too large"), response.Write)
    }
    src, err := fh.Open()
    if err != nil {
        return response.FromError(c, errors.Wrap(err, "open upload"), response.Write)
    }
    defer src.Close()

    path, err := h.Blobs.Put(ctx, fh.Filename, src, fh.Size, fh.Header.Get(echo.HeaderContentType))
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    m, err := h.Movies.SetImage(ctx, ref, path)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    return response.OK(c, h.Availability.ComposeOne(ctx, *m, h.idOf))
}

// SeanceAvailability is the body of GET /v1/movies/:id/seances.
type SeanceAvailability struct {
    ID                       string `json:"id"`
    HasReservationsAvailable bool   `json:"hasReservationsAvailable"`
}

// Seances handles GET /v1/movies/:id/seances.
func (h *MovieHandler) Seances(c echo.Context) error {
    ctx := c.Request().Context()
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    m, err := h.Movies.FindByRef(ctx, ref)
    if err != nil {
        return response.FromError(c, err, response.Lookup)
    }
    return response.OK(c, SeanceAvailability{ID: h.idOf(*m), HasReservationsAvailable: h.Availability.Has(ctx, m.UID)})
}

// Reserve handles POST /v1/movies/:id/reservations.  The request is only
// queued; the reservation service decides the outcome.
func (h *MovieHandler) Reserve(c echo.Context) error {
    ctx := c.Request().Context()
    ref, err := h.ref(c)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    var req model.ReservationRequest
    if err := bindAndValidate(c, h.Validator, "reservation", &req); err != nil {
        return response.FromError(c, err, response.Write)
    }
    m, err := h.Movies.FindByRef(ctx, ref)
    if err != nil {
        return response.FromError(c, err, response.Write)
    }
    if !h.Availability.Has(ctx, m.UID) {
        return response.FromError(c, repository.Validation("reservation", "movie has no seances"), response.Write)
    }

    now := time.Now().UTC()
    ev := q.ReservationRequestedEvent{
        RequestID:   uuid.NewString(),
        MovieUID:    m.UID,
        MovieName:   m.Name,
        SeanceID:    req.SeanceID,
        Seats:       req.Seats,
        UserID:      middleware.UserID(c),
        RequestedAt: now.Format(time.RFC3339),
    }
    if err := h.Publisher.PublishReservationRequested(ctx, ev); err != nil {
        return response.FromError(c, errors.Wrap(err, "publish reservation"), response.Write)
    }
    return response.Accepted(c, model.ReservationAccepted{
        RequestID:   ev.RequestID,
        MovieID:     h.idOf(*m),
        SeanceID:    req.SeanceID,
        Seats:       req.Seats,
        Status:      "PENDING",
        RequestedAt: now,
    })
}

// Package handler exposes the HTTP handlers of the catalog API.  Handlers
// depend on the small store interfaces below so that tests can swap in
// in-memory implementations.
package handler

import (
    "context"
    "io"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "github.com/pkg/errors"
    "go.mongodb.org/mongo-driver/v2/bson"

    "github.com/iliyamo/cinema-catalog/internal/model"
    q "github.com/iliyamo/cinema-catalog/internal/queue"
    "github.com/iliyamo/cinema-catalog/internal/repository"
)

// MovieStore is the persistence the movie handlers need.
type MovieStore interface {
    Count(ctx context.Context, f repository.MovieFilter) (int64, error)
    List(ctx context.Context, f repository.MovieFilter, page repository.Page) ([]model.Movie, error)
    FindByRef(ctx context.Context, ref repository.MovieRef) (*model.Movie, error)
    Create(ctx context.Context, req model.CreateMovieRequest) (*model.Movie, error)
    Update(ctx context.Context, ref repository.MovieRef, req model.UpdateMovieRequest) (*model.Movie, error)
    SetImage(ctx context.Context, ref repository.MovieRef, path string) (*model.Movie, error)
    Delete(ctx context.Context, ref repository.MovieRef) error
}

// GenreStore is the persistence the genre handlers need.
type GenreStore interface {
    List(ctx context.Context) ([]model.Genre, error)
    FindByID(ctx context.Context, id bson.ObjectID) (*model.Genre, error)
    FindByNameLike(ctx context.Context, name string) (*model.Genre, error)
    Create(ctx context.Context, req model.GenreRequest) (*model.Genre, error)
    Rename(ctx context.Context, id bson.ObjectID, name string) (*model.Genre, error)
    Delete(ctx context.Context, id bson.ObjectID) error
}

// BlobStore stores uploaded images.
type BlobStore interface {
    Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// ReservationPublisher hands reservation requests to the broker.
type ReservationPublisher interface {
    PublishReservationRequested(ctx context.Context, ev q.ReservationRequestedEvent) error
}

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// bindAndValidate decodes the request body into dst and checks its
// constraints.  Both failures come back as KindValidation for entity.
func bindAndValidate(c echo.Context, v *validator.Validate, entity string, dst any) error {
    if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
        return repository.Validation(entity, "invalid request body")
    }
    if err := v.StructCtx(c.Request().Context(), dst); err != nil {
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) {
            return repository.Validation(entity, validationMessage(verrs))
        }
        return repository.Validation(entity, err.Error())
    }
    return nil
}

// validationMessage renders "field: rule" pairs, e.g. "name: required".
func validationMessage(verrs validator.ValidationErrors) string {
    parts := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        rule := fe.Tag()
        if fe.Param() != "" {
            rule += "=" + fe.Param()
        }
        parts = append(parts, fe.Field()+": "+rule)
    }
    return strings.Join(parts, "; ")
}

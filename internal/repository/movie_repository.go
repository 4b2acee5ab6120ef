package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/cinema-catalog/internal/database"
	"github.com/iliyamo/cinema-catalog/internal/model"
)

const movieEntity = "movie"

// MovieRepo encapsulates all document-store queries related to movies.
type MovieRepo struct {
	handle *database.Mongo
	coll   *mongo.Collection
}

// NewMovieRepo retains the shared handle; Close releases it.
func NewMovieRepo(m *database.Mongo) *MovieRepo {
	return &MovieRepo{handle: m.Retain(), coll: m.Collection(database.MoviesCollection)}
}

// Close releases the repository's reference on the shared handle.
func (r *MovieRepo) Close(ctx context.Context) error {
	return r.handle.Release(ctx)
}

// Count returns the number of movies matching f.
func (r *MovieRepo) Count(ctx context.Context, f MovieFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, BuildMovieFilter(f))
	if err != nil {
		return 0, classify(movieEntity, "count movies", err)
	}
	return n, nil
}

// List returns the movies matching f in insertion order, restricted to page
// unless page is the zero Page.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter, page Page) ([]model.Movie, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if page.Limit > 0 {
		opts.SetSkip(page.Offset()).SetLimit(int64(page.Limit))
	}
	cur, err := r.coll.Find(ctx, BuildMovieFilter(f), opts)
	if err != nil {
		return nil, classify(movieEntity, "find movies", err)
	}
	out := make([]model.Movie, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(movieEntity, "decode movies", err)
	}
	return out, nil
}

// FindByRef fetches a single movie.
func (r *MovieRepo) FindByRef(ctx context.Context, ref MovieRef) (*model.Movie, error) {
	var m model.Movie
	if err := r.coll.FindOne(ctx, ref.Filter()).Decode(&m); err != nil {
		return nil, classify(movieEntity, "find movie", err)
	}
	return &m, nil
}

// Create inserts a movie built from req.  The external identifier and the
// timestamps are assigned here and the stored document is returned.
func (r *MovieRepo) Create(ctx context.Context, req model.CreateMovieRequest) (*model.Movie, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	m := model.Movie{
		UID:         uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Rating:      req.Rating,
		CategoryID:  req.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := r.coll.InsertOne(ctx, m)
	if err != nil {
		return nil, classify(movieEntity, "insert movie", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		m.ID = oid
	}
	return &m, nil
}

// Update applies the non-nil fields of req and returns the post-update
// document.
func (r *MovieRepo) Update(ctx context.Context, ref MovieRef, req model.UpdateMovieRequest) (*model.Movie, error) {
	return r.set(ctx, ref, req.Fields(), "update movie")
}

// SetImage records the blob path of the movie's image.
func (r *MovieRepo) SetImage(ctx context.Context, ref MovieRef, path string) (*model.Movie, error) {
	return r.set(ctx, ref, bson.M{"image": path}, "set movie image")
}

func (r *MovieRepo) set(ctx context.Context, ref MovieRef, fields bson.M, op string) (*model.Movie, error) {
	update := setStamped(fields, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m model.Movie
	if err := r.coll.FindOneAndUpdate(ctx, ref.Filter(), update, opts).Decode(&m); err != nil {
		return nil, classify(movieEntity, op, err)
	}
	return &m, nil
}

// setStamped builds a $set of fields plus updatedAt without touching fields.
func setStamped(fields bson.M, now time.Time) bson.M {
	set := make(bson.M, len(fields)+1)
	for k, v := range fields {
		set[k] = v
	}
	set["updatedAt"] = now
	return bson.M{"$set": set}
}

// Delete removes the movie; a missing movie is KindNotFound.
func (r *MovieRepo) Delete(ctx context.Context, ref MovieRef) error {
	res, err := r.coll.DeleteOne(ctx, ref.Filter())
	if err != nil {
		return classify(movieEntity, "delete movie", err)
	}
	if res.DeletedCount == 0 {
		return NotFound(movieEntity)
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/cinema-catalog/internal/database"
	"github.com/iliyamo/cinema-catalog/internal/model"
)

const genreEntity = "genre"

// GenreRepo encapsulates all document-store queries related to genres.
type GenreRepo struct {
	handle *database.Mongo
	coll   *mongo.Collection
}

func NewGenreRepo(m *database.Mongo) *GenreRepo {
	return &GenreRepo{handle: m.Retain(), coll: m.Collection(database.GenresCollection)}
}

func (r *GenreRepo) Close(ctx context.Context) error {
	return r.handle.Release(ctx)
}

// List returns every genre, unfiltered and unpaginated.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify(genreEntity, "find genres", err)
	}
	out := make([]model.Genre, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(genreEntity, "decode genres", err)
	}
	return out, nil
}

func (r *GenreRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Genre, error) {
	var g model.Genre
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, classify(genreEntity, "find genre", err)
	}
	return &g, nil
}

// FindByNameLike returns the first genre whose name contains name,
// case-insensitively.
func (r *GenreRepo) FindByNameLike(ctx context.Context, name string) (*model.Genre, error) {
	var g model.Genre
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.coll.FindOne(ctx, bson.M{"name": containsInsensitive(name)}, opts).Decode(&g); err != nil {
		return nil, classify(genreEntity, "find genre by name", err)
	}
	return &g, nil
}

func (r *GenreRepo) Create(ctx context.Context, req model.GenreRequest) (*model.Genre, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	g := model.Genre{Name: req.Name, CreatedAt: now, UpdatedAt: now}
	res, err := r.coll.InsertOne(ctx, g)
	if err != nil {
		return nil, classify(genreEntity, "insert genre", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		g.ID = oid
	}
	return &g, nil
}

// Rename sets the genre name and returns the post-update document.
func (r *GenreRepo) Rename(ctx context.Context, id bson.ObjectID, name string) (*model.Genre, error) {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC().Truncate(time.Millisecond)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g model.Genre
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&g); err != nil {
		return nil, classify(genreEntity, "update genre", err)
	}
	return &g, nil
}

// Delete removes the genre.  Movies keep their categoryId; the reference is
// loose.
func (r *GenreRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(genreEntity, "delete genre", err)
	}
	if res.DeletedCount == 0 {
		return NotFound(genreEntity)
	}
	return nil
}

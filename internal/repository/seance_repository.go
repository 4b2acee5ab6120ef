package repository

import (
	"context"
	"database/sql"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/cinema-catalog/internal/database"
)

const seanceEntity = "seance"

// MongoSeanceRepo reads seances from the seances collection.
type MongoSeanceRepo struct {
	handle *database.Mongo
	coll   *mongo.Collection
}

func NewMongoSeanceRepo(m *database.Mongo) *MongoSeanceRepo {
	return &MongoSeanceRepo{handle: m.Retain(), coll: m.Collection(database.SeancesCollection)}
}

func (r *MongoSeanceRepo) Close(ctx context.Context) error {
	return r.handle.Release(ctx)
}

// HasSeances reports whether at least one seance references movieUID.
func (r *MongoSeanceRepo) HasSeances(ctx context.Context, movieUID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"movieUid": movieUID}, options.Count().SetLimit(1))
	if err != nil {
		return false, classify(seanceEntity, "count seances", err)
	}
	return n > 0, nil
}

// SQLSeanceRepo reads seances from the shows table of the seat-reservation
// database, where each show carries the catalog uid of its movie.
type SQLSeanceRepo struct {
	db *sql.DB
}

func NewSQLSeanceRepo(db *sql.DB) *SQLSeanceRepo {
	return &SQLSeanceRepo{db: db}
}

// HasSeances reports whether a non-cancelled show references movieUID.
func (r *SQLSeanceRepo) HasSeances(ctx context.Context, movieUID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM shows WHERE movie_uid = ? AND status <> 'CANCELLED')`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, movieUID).Scan(&exists); err != nil {
		return false, StoreFailure(seanceEntity, "query shows", err)
	}
	return exists, nil
}

// Close closes the MySQL pool.
func (r *SQLSeanceRepo) Close(context.Context) error {
	return r.db.Close()
}

// Package database owns the process-wide store connections.
package database

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	MoviesCollection  = "movies"
	GenresCollection  = "genres"
	SeancesCollection = "seances"
)

// ErrReleased is returned by Release once every reference has been dropped.
var ErrReleased = errors.New("mongo handle already released")

// Mongo is the single shared document-store connection.  It is created once
// at process start with one reference held by the caller; every component
// that keeps the handle calls Retain and later Release.  The client is
// disconnected when the last reference goes away.
type Mongo struct {
	db         *mongo.Database
	refs       atomic.Int64
	disconnect func(context.Context) error
}

// ConnectMongo dials MongoDB, pings the primary and returns a handle holding
// one reference.
func ConnectMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return newMongo(client.Database(dbName), client.Disconnect), nil
}

func newMongo(db *mongo.Database, disconnect func(context.Context) error) *Mongo {
	m := &Mongo{db: db, disconnect: disconnect}
	m.refs.Store(1)
	return m
}

// Retain adds a reference and returns the same handle.
func (m *Mongo) Retain() *Mongo {
	m.refs.Add(1)
	return m
}

// Release drops a reference, disconnecting the client on the last one.
func (m *Mongo) Release(ctx context.Context) error {
	n := m.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n < 0:
		m.refs.Add(1)
		return ErrReleased
	}
	log.Info("mongo: last reference released, disconnecting")
	if m.disconnect == nil {
		return nil
	}
	return errors.Wrap(m.disconnect(ctx), "disconnect mongo")
}

// Refs reports the current reference count.
func (m *Mongo) Refs() int64 { return m.refs.Load() }

// Collection returns a collection of the configured database.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// EnsureIndexes creates the indexes the catalog relies on.  It is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	movies := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uid_unique")},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}, Options: options.Index().SetName("category")},
	}
	if _, err := m.Collection(MoviesCollection).Indexes().CreateMany(ctx, movies); err != nil {
		return errors.Wrap(err, "create movie indexes")
	}
	seances := []mongo.IndexModel{
		{Keys: bson.D{{Key: "movieUid", Value: 1}}, Options: options.Index().SetName("movie_uid")},
	}
	if _, err := m.Collection(SeancesCollection).Indexes().CreateMany(ctx, seances); err != nil {
		return errors.Wrap(err, "create seance indexes")
	}
	return nil
}

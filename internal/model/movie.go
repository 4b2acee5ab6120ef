package model

import (
    "time"

    "go.mongodb.org/mongo-driver/v2/bson"
)

// Movie is a catalog entry as stored in the movies collection.
//
// Fields:
//  ID          – internal storage identifier (ObjectID).
//  UID         – external identifier (UUIDv4), assigned once at creation.
//  Name        – display title, 1–128 characters.
//  Description – synopsis, 1–4096 characters.
//  ReleaseDate – optional release timestamp.
//  Rating      – optional integer rating in [0,5].
//  CategoryID  – hex ObjectID of the genre (loose reference).
//  Image       – blob path set by the upload endpoint.
//  CreatedAt   – set on insert.
//  UpdatedAt   – set on every write.
//
// Neither identifier is serialized directly: responses expose exactly one
// of them as "id" through MovieView.
type Movie struct {
    ID          bson.ObjectID `bson:"_id,omitempty" json:"-"`
    UID         string        `bson:"uid" json:"-"`
    Name        string        `bson:"name" json:"name"`
    Description string        `bson:"description" json:"description"`
    ReleaseDate *time.Time    `bson:"release_date,omitempty" json:"release_date,omitempty"`
    Rating      *int          `bson:"rating,omitempty" json:"rating,omitempty"`
    CategoryID  string        `bson:"categoryId" json:"categoryId"`
    Image       string        `bson:"image,omitempty" json:"image,omitempty"`
    CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
    UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// MovieView is the public representation of a movie: the stored fields, the
// single identifier of the active route family and the derived availability.
type MovieView struct {
    ID string `json:"id"`
    Movie
    HasReservationsAvailable bool `json:"hasReservationsAvailable"`
}

// CreateMovieRequest is the body of POST /v1/movies.
type CreateMovieRequest struct {
    Name        string     `json:"name" validate:"required,min=1,max=128"`
    Description string     `json:"description" validate:"required,min=1,max=4096"`
    ReleaseDate *time.Time `json:"release_date,omitempty"`
    Rating      *int       `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
    CategoryID  string     `json:"categoryId" validate:"required"`
}

// UpdateMovieRequest is the body of PUT/PATCH /v1/movies/:id.  Nil fields are
// left untouched; the external identifier is not part of the request.
type UpdateMovieRequest struct {
    Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
    Description *string    `json:"description,omitempty" validate:"omitempty,min=1,max=4096"`
    ReleaseDate *time.Time `json:"release_date,omitempty"`
    Rating      *int       `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
    CategoryID  *string    `json:"categoryId,omitempty" validate:"omitempty,min=1"`
}

// Fields returns the document fields to $set for this update.
func (r UpdateMovieRequest) Fields() bson.M {
    set := bson.M{}
    if r.Name != nil {
        set["name"] = *r.Name
    }
    if r.Description != nil {
        set["description"] = *r.Description
    }
    if r.ReleaseDate != nil {
        set["release_date"] = *r.ReleaseDate
    }
    if r.Rating != nil {
        set["rating"] = *r.Rating
    }
    if r.CategoryID != nil {
        set["categoryId"] = *r.CategoryID
    }
    return set
}

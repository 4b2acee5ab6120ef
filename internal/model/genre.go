package model

import (
    "time"

    "go.mongodb.org/mongo-driver/v2/bson"
)

// Genre groups movies; movies point at it through Movie.CategoryID.
type Genre struct {
    ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
    Name      string        `bson:"name" json:"name"`
    CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
    UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// GenreRequest is the body of POST and PUT /v1/genres.
type GenreRequest struct {
    Name string `json:"name" validate:"required,min=1,max=32"`
}

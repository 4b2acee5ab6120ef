package model

import "time"

// ReservationRequest is the body of POST /v1/movies/:id/reservations.
type ReservationRequest struct {
    SeanceID string `json:"seanceId" validate:"required"`
    Seats    int    `json:"seats" validate:"required,min=1,max=10"`
}

// ReservationAccepted is returned once a request has been handed to the
// reservation queue.
type ReservationAccepted struct {
    RequestID   string    `json:"requestId"`
    MovieID     string    `json:"movieId"`
    SeanceID    string    `json:"seanceId"`
    Seats       int       `json:"seats"`
    Status      string    `json:"status"`
    RequestedAt time.Time `json:"requestedAt"`
}

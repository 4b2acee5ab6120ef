// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationRequestedEvent is published when a client asks to book seats for
// a movie's seance.  The reservation service owns the rest of the flow.
type ReservationRequestedEvent struct {
    RequestID   string `json:"request_id"`
    MovieUID    string `json:"movie_uid"`
    MovieName   string `json:"movie_name"`
    SeanceID    string `json:"seance_id"`
    Seats       int    `json:"seats"`
    UserID      string `json:"user_id"`
    RequestedAt string `json:"requested_at"`
}

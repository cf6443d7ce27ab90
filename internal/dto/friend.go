package dto

import "time"

type Friend struct {
	ID string `json:"id"`
	// Name and Email are the snapshot taken at acceptance time, not a live
	// readout of the friend's current profile.
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	AddedAt time.Time `json:"addedAt"`
}

// PendingRequest is one entry of the incoming or outgoing request list,
// with the counterpart's current profile resolved for display.
type PendingRequest struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type SendRequestRequest struct {
	To string `json:"to"`
}

// SendRequestResponse reports the outcome of a send, including the benign
// non-error states.
type SendRequestResponse struct {
	State string `json:"state"` // "sent" | "already_pending" | "already_friends"
}

type RequestCountResponse struct {
	Pending int64 `json:"pending"`
}

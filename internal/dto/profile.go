package dto

import "time"

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchResult is one hit of the name-prefix search, annotated with the
// viewer's relationship to the hit so the client can render the right
// action (chat / add friend / request sent).
type SearchResult struct {
	Profile
	IsFriend       bool `json:"isFriend"`
	RequestPending bool `json:"requestPending"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

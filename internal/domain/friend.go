package domain

import "time"

// RequestStatusPending is the only status ever persisted: accept, reject and
// cancel all delete the row instead of transitioning it.
const RequestStatusPending = "pending"

// FriendRequest is a pending proposal from one identity to another. The
// unique index on (from_id, to_id) is what actually guarantees at most one
// pending request per ordered pair; the service-level existence check only
// exists to report a benign "already sent" outcome.
type FriendRequest struct {
	ID        RequestID `gorm:"type:uuid;primaryKey" json:"id"`
	FromID    UserID    `gorm:"type:uuid;not null;uniqueIndex:ux_friend_requests_pair,priority:1;index:idx_friend_requests_from" json:"from"`
	ToID      UserID    `gorm:"type:uuid;not null;uniqueIndex:ux_friend_requests_pair,priority:2;index:idx_friend_requests_to" json:"to"`
	Status    string    `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (FriendRequest) TableName() string { return "friend_requests" }

// FriendEdge is one direction of a confirmed friendship. Edges are created in
// symmetric pairs by the accept transition and never updated or deleted.
// Name and Email are a snapshot of the friend's profile at acceptance time
// and intentionally go stale if the friend renames later.
type FriendEdge struct {
	OwnerID  UserID    `gorm:"type:uuid;primaryKey;priority:1" json:"-"`
	FriendID UserID    `gorm:"type:uuid;primaryKey;priority:2" json:"friendId"`
	Name     string    `gorm:"type:text;not null" json:"name"`
	Email    string    `gorm:"type:text;not null" json:"email"`
	AddedAt  time.Time `gorm:"not null" json:"addedAt"`
}

func (FriendEdge) TableName() string { return "friend_edges" }

package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrUserDisabled       = errors.New("user disabled")
	ErrRateLimited        = errors.New("rate limited")

	ErrSelfRequest  = errors.New("cannot friend yourself")
	ErrNotReceiver  = errors.New("only the receiver may act on this request")
	ErrNotSender    = errors.New("only the sender may cancel this request")
	ErrRequestGone  = errors.New("friend request not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidName  = errors.New("display name cannot be empty")

	ErrInvalidChannel = errors.New("invalid channel id")
	ErrNotParticipant = errors.New("sender is not a channel participant")
	ErrEmptyMessage   = errors.New("empty message text")
)

func parseUserID(s string) (UserID, error) { return uuid.Parse(s) }

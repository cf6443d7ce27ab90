package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/observability/metrics"
	"linkup/internal/realtime"
	"linkup/internal/store"
)

// SendOutcome distinguishes the benign non-error results of sending a
// friend request from an actual send.
type SendOutcome string

const (
	OutcomeSent           SendOutcome = "sent"
	OutcomeAlreadyPending SendOutcome = "already_pending"
	OutcomeAlreadyFriends SendOutcome = "already_friends"
)

type FriendService struct {
	store  *store.Store
	broker realtime.Broker
	now    func() time.Time
}

func NewFriendService(st *store.Store, broker realtime.Broker) *FriendService {
	return &FriendService{store: st, broker: broker, now: time.Now}
}

// Send moves the (from, to) pair from NONE to PENDING. Duplicate requests
// and existing friendships are reported as outcomes, not errors; the unique
// index on the pair is what actually closes the check-then-insert race, and
// a constraint hit maps back to OutcomeAlreadyPending.
func (f *FriendService) Send(ctx context.Context, from, to domain.UserID) (SendOutcome, error) {
	result := "success"
	defer func() { metrics.FriendRequestActionsTotal.WithLabelValues("send", result).Inc() }()

	if from == to {
		result = "invalid"
		return "", domain.ErrSelfRequest
	}
	if _, err := f.store.Users().GetByID(ctx, to); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "invalid"
			return "", domain.ErrUserNotFound
		}
		result = "failure"
		return "", err
	}

	pending, err := f.store.Requests().PendingExists(ctx, from, to)
	if err != nil {
		result = "failure"
		return "", err
	}
	if pending {
		return OutcomeAlreadyPending, nil
	}

	friends, err := f.store.Edges().Exists(ctx, from, to)
	if err != nil {
		result = "failure"
		return "", err
	}
	if friends {
		return OutcomeAlreadyFriends, nil
	}

	req := &domain.FriendRequest{
		FromID:    from,
		ToID:      to,
		Status:    domain.RequestStatusPending,
		CreatedAt: f.now().UTC(),
	}
	if err := f.store.Requests().Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicatePair) {
			return OutcomeAlreadyPending, nil
		}
		result = "failure"
		return "", err
	}

	f.publishRequestEvent(ctx, realtime.KindRequestCreated, req)
	return OutcomeSent, nil
}

// Accept turns a pending request into a symmetric pair of friend edges.
// The order inside the transaction mirrors the handshake contract: both
// edges are written before the request is deleted, each edge carrying a
// snapshot of the counterpart's profile as it is at this moment. All three
// writes are idempotent, so a retried accept is a no-op.
func (f *FriendService) Accept(ctx context.Context, requestID domain.RequestID, caller domain.UserID) error {
	result := "success"
	defer func() { metrics.FriendRequestActionsTotal.WithLabelValues("accept", result).Inc() }()

	req, err := f.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "gone"
			return domain.ErrRequestGone
		}
		result = "failure"
		return err
	}
	if req.ToID != caller {
		result = "forbidden"
		return domain.ErrNotReceiver
	}

	var reverse *domain.FriendRequest
	err = f.store.WithTx(ctx, func(tx *store.Store) error {
		sender, err := tx.Users().GetByID(ctx, req.FromID)
		if err != nil {
			return err
		}
		receiver, err := tx.Users().GetByID(ctx, req.ToID)
		if err != nil {
			return err
		}

		now := f.now().UTC()
		if err := tx.Edges().Upsert(ctx, &domain.FriendEdge{
			OwnerID:  receiver.ID,
			FriendID: sender.ID,
			Name:     sender.Name,
			Email:    sender.Email,
			AddedAt:  now,
		}); err != nil {
			return err
		}
		if err := tx.Edges().Upsert(ctx, &domain.FriendEdge{
			OwnerID:  sender.ID,
			FriendID: receiver.ID,
			Name:     receiver.Name,
			Email:    receiver.Email,
			AddedAt:  now,
		}); err != nil {
			return err
		}
		if err := tx.Requests().Delete(ctx, req.ID); err != nil {
			return err
		}

		// A mutual pending pair collapses into one friendship: the
		// reverse-direction request is consumed by this accept too.
		rev, err := tx.Requests().GetPending(ctx, req.ToID, req.FromID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		reverse = rev
		return tx.Requests().Delete(ctx, rev.ID)
	})
	if err != nil {
		result = "failure"
		return err
	}

	f.publishRequestEvent(ctx, realtime.KindRequestRemoved, req)
	if reverse != nil {
		f.publishRequestEvent(ctx, realtime.KindRequestRemoved, reverse)
	}
	f.publishFriendAdded(ctx, req.FromID, req.ToID)
	f.publishFriendAdded(ctx, req.ToID, req.FromID)
	slog.Info("friend request accepted", "request_id", req.ID, "from", req.FromID, "to", req.ToID)
	return nil
}

// Reject deletes a pending request; only the receiver may do it.
func (f *FriendService) Reject(ctx context.Context, requestID domain.RequestID, caller domain.UserID) error {
	return f.removeRequest(ctx, "reject", requestID, caller, false)
}

// Cancel deletes a pending request; only the original sender may do it.
func (f *FriendService) Cancel(ctx context.Context, requestID domain.RequestID, caller domain.UserID) error {
	return f.removeRequest(ctx, "cancel", requestID, caller, true)
}

func (f *FriendService) removeRequest(ctx context.Context, action string, requestID domain.RequestID, caller domain.UserID, bySender bool) error {
	result := "success"
	defer func() { metrics.FriendRequestActionsTotal.WithLabelValues(action, result).Inc() }()

	req, err := f.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "gone"
			return domain.ErrRequestGone
		}
		result = "failure"
		return err
	}
	if bySender && req.FromID != caller {
		result = "forbidden"
		return domain.ErrNotSender
	}
	if !bySender && req.ToID != caller {
		result = "forbidden"
		return domain.ErrNotReceiver
	}

	if err := f.store.Requests().Delete(ctx, req.ID); err != nil {
		result = "failure"
		return err
	}
	f.publishRequestEvent(ctx, realtime.KindRequestRemoved, req)
	return nil
}

// IsFriend is a single keyed existence check on the caller's own edge.
func (f *FriendService) IsFriend(ctx context.Context, owner, candidate domain.UserID) (bool, error) {
	return f.store.Edges().Exists(ctx, owner, candidate)
}

// ListFriends returns the owner's edges with their acceptance-time
// snapshots. The owner never appears in its own list.
func (f *FriendService) ListFriends(ctx context.Context, owner domain.UserID) ([]dto.Friend, error) {
	edges, err := f.store.Edges().ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Friend, 0, len(edges))
	for _, e := range edges {
		if e.FriendID == owner {
			continue
		}
		out = append(out, dto.Friend{
			ID:      e.FriendID.String(),
			Name:    e.Name,
			Email:   e.Email,
			AddedAt: e.AddedAt,
		})
	}
	return out, nil
}

// Incoming lists pending requests addressed to uid, with the senders'
// current profiles resolved in one batch.
func (f *FriendService) Incoming(ctx context.Context, uid domain.UserID) ([]dto.PendingRequest, error) {
	reqs, err := f.store.Requests().ListIncoming(ctx, uid)
	if err != nil {
		return nil, err
	}
	return f.resolveRequests(ctx, reqs, func(r *domain.FriendRequest) domain.UserID { return r.FromID })
}

// Outgoing lists pending requests sent by uid, with the recipients'
// current profiles resolved in one batch.
func (f *FriendService) Outgoing(ctx context.Context, uid domain.UserID) ([]dto.PendingRequest, error) {
	reqs, err := f.store.Requests().ListOutgoing(ctx, uid)
	if err != nil {
		return nil, err
	}
	return f.resolveRequests(ctx, reqs, func(r *domain.FriendRequest) domain.UserID { return r.ToID })
}

// PendingCount backs the requests badge.
func (f *FriendService) PendingCount(ctx context.Context, uid domain.UserID) (int64, error) {
	return f.store.Requests().CountIncoming(ctx, uid)
}

func (f *FriendService) resolveRequests(ctx context.Context, reqs []domain.FriendRequest, counterpart func(*domain.FriendRequest) domain.UserID) ([]dto.PendingRequest, error) {
	ids := make([]domain.UserID, 0, len(reqs))
	for i := range reqs {
		ids = append(ids, counterpart(&reqs[i]))
	}
	profiles, err := f.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PendingRequest, 0, len(reqs))
	for i := range reqs {
		r := &reqs[i]
		pr := dto.PendingRequest{
			ID:        r.ID.String(),
			From:      r.FromID.String(),
			To:        r.ToID.String(),
			CreatedAt: r.CreatedAt,
		}
		if p, ok := profiles[counterpart(r)]; ok {
			pr.Name = p.Name
			pr.Email = p.Email
		}
		out = append(out, pr)
	}
	return out, nil
}

// publishRequestEvent notifies both sides' request topics. Publish failures
// are logged, never surfaced: the durable write already happened and the
// client can refetch.
func (f *FriendService) publishRequestEvent(ctx context.Context, kind string, req *domain.FriendRequest) {
	payload, err := json.Marshal(req)
	if err != nil {
		return
	}
	for _, topic := range []string{
		realtime.IncomingTopic(req.ToID.String()),
		realtime.OutgoingTopic(req.FromID.String()),
	} {
		if err := f.broker.Publish(ctx, realtime.Event{Topic: topic, Kind: kind, Payload: payload}); err != nil {
			slog.Warn("publish request event", "topic", topic, "error", err)
		}
	}
}

func (f *FriendService) publishFriendAdded(ctx context.Context, owner, friend domain.UserID) {
	payload, _ := json.Marshal(map[string]string{"friendId": friend.String()})
	topic := realtime.FriendsTopic(owner.String())
	if err := f.broker.Publish(ctx, realtime.Event{Topic: topic, Kind: realtime.KindFriendAdded, Payload: payload}); err != nil {
		slog.Warn("publish friend event", "topic", topic, "error", err)
	}
}

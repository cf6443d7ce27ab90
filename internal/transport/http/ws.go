package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/observability/metrics"
	"linkup/internal/realtime"
	"linkup/internal/service"
)

const pingInterval = 30 * time.Second

// wsSession is one client's live attach: the connection plus every broker
// subscription feeding it. Shutdown cancels the subscriptions first, so a
// superseded session stops receiving before its socket closes.
type wsSession struct {
	conn *wsConn
	subs []*realtime.Subscription
	done chan struct{}
	once sync.Once
}

func (s *wsSession) shutdown() {
	s.once.Do(func() {
		for _, sub := range s.subs {
			sub.Cancel()
		}
		close(s.done)
		s.conn.close()
	})
}

// wsRegistry enforces one live attach per identity. A reconnect, or a switch
// to a different channel, supersedes the previous session outright rather
// than stacking subscriptions for views the client already left.
type wsRegistry struct {
	mu       sync.Mutex
	sessions map[domain.UserID]*wsSession
}

func newWSRegistry() *wsRegistry {
	return &wsRegistry{sessions: make(map[domain.UserID]*wsSession)}
}

func (reg *wsRegistry) attach(uid domain.UserID, s *wsSession) {
	reg.mu.Lock()
	prev := reg.sessions[uid]
	reg.sessions[uid] = s
	reg.mu.Unlock()
	if prev != nil {
		prev.shutdown()
	}
}

func (reg *wsRegistry) detach(uid domain.UserID, s *wsSession) {
	reg.mu.Lock()
	if reg.sessions[uid] == s {
		delete(reg.sessions, uid)
	}
	reg.mu.Unlock()
}

// handleWS upgrades to a websocket and pushes the caller's live events:
// friend-list changes, request badge changes, and, when ?channel= names a
// chat the caller belongs to, that channel's history followed by new
// messages. Auth rides in ?token= because browsers cannot set headers here.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	uid, err := h.identityFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	channelID := r.URL.Query().Get("channel")

	var (
		history []dto.ChatMessage
		subs    []*realtime.Subscription
	)
	cancelAll := func() {
		for _, s := range subs {
			s.Cancel()
		}
	}

	if channelID != "" {
		if _, _, err := domain.ChannelMembers(channelID); err != nil {
			writeError(w, r, err)
			return
		}
		if !domain.IsChannelMember(channelID, uid) {
			writeError(w, r, domain.ErrNotParticipant)
			return
		}
		hist, sub, err := h.chat.Open(r.Context(), channelID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		history = hist
		subs = append(subs, sub)
	}

	for _, topic := range []string{
		realtime.FriendsTopic(uid.String()),
		realtime.IncomingTopic(uid.String()),
		realtime.OutgoingTopic(uid.String()),
	} {
		sub, err := h.broker.Subscribe(topic)
		if err != nil {
			cancelAll()
			writeError(w, r, err)
			return
		}
		subs = append(subs, sub)
	}

	ws, err := acceptWebSocket(w, r)
	if err != nil {
		cancelAll()
		slog.Warn("ws handshake failed", "user_id", uid, "error", err)
		return
	}

	sess := &wsSession{conn: ws, subs: subs, done: make(chan struct{})}
	h.ws.attach(uid, sess)
	defer h.ws.detach(uid, sess)
	defer sess.shutdown()

	metrics.RealtimeSubscriptionsActive.WithLabelValues("ws").Inc()
	defer metrics.RealtimeSubscriptionsActive.WithLabelValues("ws").Dec()

	writeEvent := func(ev realtime.Event) bool {
		data, err := json.Marshal(ev)
		if err != nil {
			return true
		}
		return ws.writeFrame(opText, data) == nil
	}

	// Replay the channel log before anything live.
	chatTopic := realtime.ChatTopic(channelID)
	for i := range history {
		payload, err := json.Marshal(history[i])
		if err != nil {
			continue
		}
		if !writeEvent(realtime.Event{Topic: chatTopic, Kind: realtime.KindMessage, Payload: payload}) {
			return
		}
	}

	// The client never sends application frames; any read activity ending
	// means the peer is gone.
	go func() {
		ws.drain()
		sess.shutdown()
	}()

	events := fanIn(subs, sess.done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if channelID != "" && ev.Topic == chatTopic && ev.Kind == realtime.KindMessage {
				var m dto.ChatMessage
				if err := json.Unmarshal(ev.Payload, &m); err == nil && !service.AfterHistory(history, &m) {
					continue // already replayed from the log
				}
			}
			if !writeEvent(ev) {
				return
			}
		case <-ticker.C:
			if err := ws.writeFrame(opPing, nil); err != nil {
				return
			}
		}
	}
}

// fanIn merges the session's subscriptions into one stream. The merged
// channel closes once every subscription has been canceled.
func fanIn(subs []*realtime.Subscription, done <-chan struct{}) <-chan realtime.Event {
	out := make(chan realtime.Event)
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *realtime.Subscription) {
			defer wg.Done()
			for ev := range sub.C() {
				select {
				case out <- ev:
				case <-done:
					return
				}
			}
		}(sub)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

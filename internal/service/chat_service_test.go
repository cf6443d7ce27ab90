package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/realtime"
	"linkup/internal/service"
)

func TestSendAndHistoryOrder(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")
	channel := domain.ChannelID(alice.ID, bob.ID)

	texts := []string{"hello", "hi there", "how are you"}
	senders := []domain.UserID{alice.ID, bob.ID, alice.ID}
	for i, text := range texts {
		if _, err := env.chat.Send(ctx, channel, senders[i], text); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	history, err := env.chat.History(ctx, channel)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(history))
	}
	for i, msg := range history {
		if msg.Text != texts[i] {
			t.Fatalf("message %d out of order: got %q, want %q", i, msg.Text, texts[i])
		}
		if msg.SenderID != senders[i].String() {
			t.Fatalf("message %d has sender %s, want %s", i, msg.SenderID, senders[i])
		}
		if i > 0 && msg.Timestamp.Before(history[i-1].Timestamp) {
			t.Fatalf("timestamps not monotonic at %d", i)
		}
	}
}

func TestSendValidatesInput(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")
	eve := createUser(t, env.store, "Eve", "eve@example.com")
	channel := domain.ChannelID(alice.ID, bob.ID)

	if _, err := env.chat.Send(ctx, channel, alice.ID, "   "); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := env.chat.Send(ctx, "not-a-channel", alice.ID, "hi"); !errors.Is(err, domain.ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
	if _, err := env.chat.Send(ctx, channel, eve.ID, "hi"); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestHistoryEmptyChannel(t *testing.T) {
	env := setupEnv(t)

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")

	history, err := env.chat.History(context.Background(), domain.ChannelID(alice.ID, bob.ID))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestHistoryReplacesUnsupportedKinds(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")
	channel := domain.ChannelID(alice.ID, bob.ID)

	err := env.store.Messages().Append(ctx, &domain.ChatMessage{
		ChannelID: channel,
		SenderID:  alice.ID,
		Kind:      domain.MessageKindFile,
		Text:      "cat.png",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := env.chat.History(ctx, channel)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Text != dto.UnsupportedMessageBody {
		t.Fatalf("expected placeholder body, got %+v", history)
	}
}

func TestOpenStreamsNewMessages(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")
	channel := domain.ChannelID(alice.ID, bob.ID)

	if _, err := env.chat.Send(ctx, channel, alice.ID, "before open"); err != nil {
		t.Fatalf("send: %v", err)
	}

	history, sub, err := env.chat.Open(ctx, channel)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sub.Cancel()

	if len(history) != 1 || history[0].Text != "before open" {
		t.Fatalf("unexpected history: %+v", history)
	}

	sent, err := env.chat.Send(ctx, channel, bob.ID, "after open")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	ev := recvEvent(t, sub)
	if ev.Kind != realtime.KindMessage {
		t.Fatalf("expected message event, got %q", ev.Kind)
	}
	var live dto.ChatMessage
	if err := json.Unmarshal(ev.Payload, &live); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if live.ID != sent.ID || live.Text != "after open" {
		t.Fatalf("unexpected live message: %+v", live)
	}
	if !service.AfterHistory(history, &live) {
		t.Fatalf("live message should extend past the history snapshot")
	}
}

func TestAfterHistory(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	idA := uuid.New().String()
	idB := uuid.New().String()
	if idA > idB {
		idA, idB = idB, idA
	}

	history := []dto.ChatMessage{
		{ID: idA, Timestamp: base},
	}

	cases := []struct {
		name string
		msg  dto.ChatMessage
		want bool
	}{
		{"later timestamp", dto.ChatMessage{ID: idB, Timestamp: base.Add(time.Second)}, true},
		{"same timestamp greater id", dto.ChatMessage{ID: idB, Timestamp: base}, true},
		{"duplicate of last entry", dto.ChatMessage{ID: idA, Timestamp: base}, false},
		{"earlier timestamp", dto.ChatMessage{ID: idB, Timestamp: base.Add(-time.Second)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.AfterHistory(history, &tc.msg); got != tc.want {
				t.Fatalf("AfterHistory = %v, want %v", got, tc.want)
			}
		})
	}

	if !service.AfterHistory(nil, &dto.ChatMessage{ID: idA, Timestamp: base}) {
		t.Fatalf("everything extends an empty history")
	}
}

func TestOpenRejectsMalformedChannel(t *testing.T) {
	env := setupEnv(t)

	if _, _, err := env.chat.Open(context.Background(), "nope"); !errors.Is(err, domain.ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}

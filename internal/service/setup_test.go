package service_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"linkup/internal/domain"
	"linkup/internal/observability/metrics"
	"linkup/internal/realtime"
	"linkup/internal/service"
	"linkup/internal/store"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}

type testEnv struct {
	store    *store.Store
	broker   *realtime.MemoryBroker
	tokens   *service.TokenService
	auth     *service.AuthService
	profiles *service.ProfileService
	friends  *service.FriendService
	chat     *service.ChatService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// A unique DSN per test keeps the shared-cache in-memory databases
	// isolated from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	st := store.New(db)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })

	tokens := service.NewTokenService(service.TokenConfig{
		Issuer:     "linkup-test",
		Audience:   "linkup-test-clients",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		SigningKey: []byte("test-signing-key"),
	}, st)

	return &testEnv{
		store:    st,
		broker:   broker,
		tokens:   tokens,
		auth:     service.NewAuthService(st, service.NewPasswordHasher(), tokens),
		profiles: service.NewProfileService(st),
		friends:  service.NewFriendService(st, broker),
		chat:     service.NewChatService(st, broker),
	}
}

func createUser(t *testing.T, st *store.Store, name, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := &domain.User{ID: uuid.New(), Email: email, CreatedAt: now, UpdatedAt: now}
	u.SetName(name)
	if err := st.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func recvEvent(t *testing.T, sub *realtime.Subscription) realtime.Event {
	t.Helper()

	select {
	case ev, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription on %s closed", sub.Topic())
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event on %s", sub.Topic())
	}
	return realtime.Event{}
}

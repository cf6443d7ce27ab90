package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obsmw "linkup/internal/observability/middleware"
	"linkup/internal/realtime"
	"linkup/internal/service"
)

type RouterConfig struct {
	CORSOrigins     string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type Handler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
	friends  *service.FriendService
	chat     *service.ChatService
	tokens   *service.TokenService
	broker   realtime.Broker
	ws       *wsRegistry
}

func NewRouter(cfg RouterConfig,
	auth *service.AuthService,
	profiles *service.ProfileService,
	friends *service.FriendService,
	chat *service.ChatService,
	tokens *service.TokenService,
	broker realtime.Broker,
) http.Handler {
	h := &Handler{
		auth:     auth,
		profiles: profiles,
		friends:  friends,
		chat:     chat,
		tokens:   tokens,
		broker:   broker,
		ws:       newWSRegistry(),
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	origins := strings.Split(cfg.CORSOrigins, ",")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(origins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.With(httprate.LimitByIP(cfg.LoginRateLimit, cfg.LoginRateWindow)).
			Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/refresh", h.handleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(h.requireIdentity)

		r.Get("/v1/me", h.handleMe)
		r.Patch("/v1/me/name", h.handleRename)
		r.Get("/v1/users/search", h.handleSearch)

		r.Get("/v1/friends", h.handleListFriends)
		r.Route("/v1/friends/requests", func(r chi.Router) {
			r.Post("/", h.handleSendRequest)
			r.Get("/incoming", h.handleIncoming)
			r.Get("/outgoing", h.handleOutgoing)
			r.Get("/count", h.handleRequestCount)
			r.Post("/{id}/accept", h.handleAccept)
			r.Post("/{id}/reject", h.handleReject)
			r.Post("/{id}/cancel", h.handleCancel)
		})

		r.Post("/v1/chat/messages", h.handleSendMessage)
		r.Get("/v1/chat/{channelID}/history", h.handleHistory)
	})

	// The websocket attach authenticates itself (token travels in the
	// query string, not a header) and must not sit behind the timeout.
	r.Get("/v1/ws", h.handleWS)

	return r
}

func originsIfSet(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

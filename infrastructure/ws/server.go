package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"chat-pulse/contract"
	"chat-pulse/observability"
	"chat-pulse/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from any origin, auth happens in-band.
		return true
	},
}

// Server upgrades HTTP requests into live sessions.
type Server struct {
	accounts services.IAuthService
	chat     services.IChatService
	presence contract.IPresence
	router   contract.IRouter
	stats    *observability.Stats
	log      *slog.Logger
}

func NewServer(accounts services.IAuthService, chat services.IChatService,
	presence contract.IPresence, router contract.IRouter,
	stats *observability.Stats, log *slog.Logger) *Server {
	return &Server{
		accounts: accounts,
		chat:     chat,
		presence: presence,
		router:   router,
		stats:    stats,
		log:      log,
	}
}

// HandleWS is the upgrade endpoint. Each accepted connection runs its own
// session until the transport dies or the server shuts down.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := NewSession(conn, s.accounts, s.chat, s.presence, s.router, s.stats, s.log)
	session.Run(r.Context())
}

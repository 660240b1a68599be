// Package api exposes the HTTP surface around the messaging core:
// accounts, chats, history, stories, media upload and search. Live
// traffic goes through the websocket endpoint, not here.
package api

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"chat-pulse/auth"
	"chat-pulse/contract"
	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/repositories"
	"chat-pulse/search"
	"chat-pulse/services"
)

type Server struct {
	accounts services.IAuthService
	chat     services.IChatService
	storage  repositories.Storage
	index    *search.MessageIndex
	presence contract.IPresence
	router   contract.IRouter
	media    *MediaStore
	verify   TokenVerifier
	log      *slog.Logger
}

// TokenVerifier checks a bearer token and returns the identity it carries.
type TokenVerifier interface {
	VerifyBearer(token string) (domain.UserID, error)
}

type jwtVerifier struct {
	issuer auth.TokenIssuer
}

// NewJWTVerifier adapts the token issuer into the middleware contract.
func NewJWTVerifier(issuer auth.TokenIssuer) TokenVerifier {
	return jwtVerifier{issuer: issuer}
}

func (v jwtVerifier) VerifyBearer(token string) (domain.UserID, error) {
	claims, err := v.issuer.Validate(token)
	if err != nil {
		return 0, err
	}
	return domain.UserID(claims.UserID), nil
}

func NewServer(accounts services.IAuthService, chat services.IChatService,
	storage repositories.Storage, index *search.MessageIndex,
	presence contract.IPresence, router contract.IRouter, media *MediaStore,
	verify TokenVerifier, log *slog.Logger) *Server {
	return &Server{
		accounts: accounts,
		chat:     chat,
		storage:  storage,
		index:    index,
		presence: presence,
		router:   router,
		media:    media,
		verify:   verify,
		log:      log,
	}
}

// Register mounts every route on the mux. Mutating routes demand a
// bearer token, reads are open.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /api/users/online", s.handleOnlineUsers)
	mux.HandleFunc("GET /api/users/{id}/chats", s.handleChatsForUser)

	mux.HandleFunc("POST /api/chats", s.authenticated(s.handleCreateChat))
	mux.HandleFunc("GET /api/chats/{id}", s.handleGetChat)
	mux.HandleFunc("POST /api/chats/{id}/members", s.authenticated(s.handleAddMember))
	mux.HandleFunc("GET /api/chats/{id}/messages", s.handleHistory)
	mux.HandleFunc("POST /api/messages", s.authenticated(s.handlePostMessage))

	mux.HandleFunc("POST /api/stories", s.authenticated(s.handleCreateStory))
	mux.HandleFunc("GET /api/stories", s.handleActiveStories)
	mux.HandleFunc("GET /api/users/{id}/stories", s.handleStoriesForUser)

	mux.HandleFunc("POST /api/media", s.authenticated(s.handleMediaUpload))
	mux.Handle("GET /media/", s.media.FileHandler())

	mux.HandleFunc("GET /api/search", s.handleSearch)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, caller domain.UserID)

// authenticated wraps a handler with bearer token validation.
func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		caller, err := s.verify.VerifyBearer(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, caller)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps application errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrNotFound), stderrors.Is(err, errors.ErrAccountUnknown):
		s.writeError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrInvalidPayload),
		stderrors.Is(err, errors.ErrInvalidUsername),
		stderrors.Is(err, errors.ErrInvalidPassword):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrNotAuthenticated), stderrors.Is(err, errors.ErrInvalidToken):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"chat-pulse/domain"
	"chat-pulse/protocol"
	"chat-pulse/repositories"
	"chat-pulse/services"
)

const defaultStoryTTL = 24 * time.Hour

type registerRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Password string `json:"password,omitempty"`
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	user, token, err := s.accounts.Register(r.Context(), services.RegisterInput{
		Username: body.Username,
		Avatar:   body.Avatar,
		Bio:      body.Bio,
		Password: body.Password,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{User: user, Token: string(token)})
}

type loginRequest struct {
	UserID   domain.UserID `json:"userId"`
	Password string        `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	user, token, err := s.accounts.Login(r.Context(), body.UserID, body.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{User: user, Token: string(token)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.storage.GetAccount(r.Context(), domain.UserID(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

type onlineUser struct {
	UserID domain.UserID `json:"userId"`
	Status domain.Status `json:"status"`
}

func (s *Server) handleOnlineUsers(w http.ResponseWriter, _ *http.Request) {
	online := lo.Map(s.presence.Snapshot(), func(id domain.UserID, _ int) onlineUser {
		return onlineUser{UserID: id, Status: domain.StatusOnline}
	})
	s.writeJSON(w, http.StatusOK, online)
}

func (s *Server) handleChatsForUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	chats, err := s.storage.GetChatsForUser(r.Context(), domain.UserID(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chats)
}

type createChatRequest struct {
	Name    string          `json:"name"`
	Avatar  string          `json:"avatar,omitempty"`
	IsGroup bool            `json:"isGroup"`
	Members []domain.UserID `json:"members,omitempty"`
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request, caller domain.UserID) {
	var body createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	chat, err := s.storage.CreateChat(r.Context(), repositories.CreateChatInput{
		Name:      body.Name,
		Avatar:    body.Avatar,
		IsGroup:   body.IsGroup,
		CreatedBy: caller,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// The creator is always a member and administers the chat.
	members := lo.Uniq(append([]domain.UserID{caller}, body.Members...))
	for _, member := range members {
		if err := s.storage.AddChatMember(r.Context(), chat.ID, member, member == caller); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, chat)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	chat, err := s.storage.GetChat(r.Context(), domain.ChatID(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chat)
}

type addMemberRequest struct {
	UserID domain.UserID `json:"userId"`
	Admin  bool          `json:"admin"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request, _ domain.UserID) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var body addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	if _, err := s.storage.GetChat(r.Context(), domain.ChatID(id)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.storage.AddChatMember(r.Context(), domain.ChatID(id), body.UserID, body.Admin); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	messages, err := s.chat.History(r.Context(), domain.ChatID(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messages)
}

type postMessageRequest struct {
	ChatID    domain.ChatID `json:"chatId"`
	Text      string        `json:"text,omitempty"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
	MediaType string        `json:"mediaType,omitempty"`
}

// handlePostMessage is the REST twin of the websocket message intent. The
// message still fans out to live members of the chat.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request, caller domain.UserID) {
	var body postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body.ChatID == 0 {
		s.writeError(w, http.StatusBadRequest, "missing chatId")
		return
	}

	msg, err := s.chat.PostMessage(r.Context(), services.PostMessageCommand{
		UserID:    caller,
		ChatID:    body.ChatID,
		Text:      body.Text,
		MediaURL:  body.MediaURL,
		MediaType: body.MediaType,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.router.BroadcastToChatMembers(r.Context(), body.ChatID,
		protocol.New(protocol.TypeNewMessage, protocol.NewMessage{
			ChatID:  body.ChatID,
			Message: msg,
		}))
	s.writeJSON(w, http.StatusCreated, msg)
}

type createStoryRequest struct {
	MediaURL  string `json:"mediaUrl"`
	MediaType string `json:"mediaType,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request, caller domain.UserID) {
	var body createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	story, err := s.chat.PostStory(r.Context(), repositories.CreateStoryInput{
		UserID:    caller,
		MediaURL:  body.MediaURL,
		MediaType: body.MediaType,
		Caption:   body.Caption,
		ExpiresAt: time.Now().Add(defaultStoryTTL),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, story)
}

func (s *Server) handleStoriesForUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	stories, err := s.storage.StoriesForUser(r.Context(), domain.UserID(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleActiveStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.chat.ActiveStories(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleMediaUpload(w http.ResponseWriter, r *http.Request, _ domain.UserID) {
	upload, err := s.media.Save(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, upload)
}

type searchHit struct {
	Message domain.Message `json:"message"`
	Score   float64        `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		s.writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	var chatID domain.ChatID
	if raw := r.URL.Query().Get("chatId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid chatId")
			return
		}
		chatID = domain.ChatID(id)
	}

	hits, err := s.index.Search(r.Context(), terms, chatID, 20)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Resolve hits back to full messages, dropping any the store no
	// longer has.
	results := make([]searchHit, 0, len(hits))
	for _, hit := range hits {
		msg, err := s.storage.GetMessage(r.Context(), hit.MessageID)
		if err != nil {
			continue
		}
		results = append(results, searchHit{Message: msg, Score: hit.Score})
	}
	s.writeJSON(w, http.StatusOK, results)
}

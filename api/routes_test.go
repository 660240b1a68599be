package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-pulse/auth"
	"chat-pulse/domain"
	"chat-pulse/moderation"
	"chat-pulse/observability"
	"chat-pulse/protocol"
	"chat-pulse/repositories"
	"chat-pulse/runtime"
	"chat-pulse/search"
	"chat-pulse/services"
)

type apiHarness struct {
	server   *httptest.Server
	storage  *repositories.Memory
	presence *runtime.Presence
	chat     *services.ChatService
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	storage := repositories.NewMemory()
	stats := observability.NewStats()
	presence := runtime.NewPresence()
	router := runtime.NewRouter(log, storage, presence, stats)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = writer.Close()
	})
	index := search.NewMessageIndex(writer, log)

	issuer := auth.NewTokenIssuer("api-test-secret", time.Hour)
	accounts := services.NewAuthService(storage, issuer, log)
	chat := services.NewChatService(storage, &moderator, index, stats, log)

	media, err := NewMediaStore(t.TempDir(), log)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewServer(accounts, chat, storage, index, presence, router, media, NewJWTVerifier(issuer), log).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &apiHarness{server: srv, storage: storage, presence: presence, chat: chat}
}

func (h *apiHarness) post(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (h *apiHarness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(h.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *apiHarness) registerUser(t *testing.T, username string) (domain.User, string) {
	t.Helper()
	resp := h.post(t, "/api/users", "", registerRequest{Username: username})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody[authResponse](t, resp)
	return body.User, body.Token
}

func TestAPI_RegisterAndFetchUser(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	user, token := h.registerUser(t, "alice_42")
	req.NotZero(user.ID)
	req.NotEmpty(token)
	req.True(user.Guest)

	resp := h.get(t, "/api/users/"+strconv.Itoa(int(user.ID)))
	req.Equal(http.StatusOK, resp.StatusCode)
	fetched := decodeBody[domain.User](t, resp)
	req.Equal("alice_42", fetched.Username)
}

func TestAPI_RegisterRejectsBadUsername(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	resp := h.post(t, "/api/users", "", registerRequest{Username: "a b"})
	defer func() {
		_ = resp.Body.Close()
	}()
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// Too short for the length rule, well before the character checks
	resp = h.post(t, "/api/users", "", registerRequest{Username: "al"})
	defer func() {
		_ = resp.Body.Close()
	}()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LoginFlow(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	resp := h.post(t, "/api/users", "", registerRequest{Username: "bob_99", Password: "ComplexPass123!"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	created := decodeBody[authResponse](t, resp)
	req.False(created.User.Guest)

	resp = h.post(t, "/api/login", "", loginRequest{UserID: created.User.ID, Password: "ComplexPass123!"})
	req.Equal(http.StatusOK, resp.StatusCode)
	logged := decodeBody[authResponse](t, resp)
	req.NotEmpty(logged.Token)

	resp = h.post(t, "/api/login", "", loginRequest{UserID: created.User.ID, Password: "WrongPass123!"})
	defer func() {
		_ = resp.Body.Close()
	}()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ChatLifecycle(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	alice, aliceToken := h.registerUser(t, "alice_42")
	bob, _ := h.registerUser(t, "bob_99")

	// Creating a chat requires a token
	resp := h.post(t, "/api/chats", "", createChatRequest{Name: "room"})
	_ = resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = h.post(t, "/api/chats", aliceToken, createChatRequest{
		Name:    "room",
		IsGroup: true,
		Members: []domain.UserID{bob.ID},
	})
	req.Equal(http.StatusCreated, resp.StatusCode)
	chat := decodeBody[domain.Chat](t, resp)

	// Both users are members
	members, err := h.storage.GetChatMembers(context.Background(), chat.ID)
	req.NoError(err)
	req.ElementsMatch([]domain.UserID{alice.ID, bob.ID}, members)

	// The chat shows up for its members
	resp = h.get(t, "/api/users/"+strconv.Itoa(int(bob.ID))+"/chats")
	req.Equal(http.StatusOK, resp.StatusCode)
	chats := decodeBody[[]domain.Chat](t, resp)
	req.Len(chats, 1)
	req.Equal(chat.ID, chats[0].ID)
}

func TestAPI_HistoryAndSearch(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)
	ctx := context.Background()

	alice, aliceToken := h.registerUser(t, "alice_42")

	resp := h.post(t, "/api/chats", aliceToken, createChatRequest{Name: "room", IsGroup: true})
	chat := decodeBody[domain.Chat](t, resp)

	_, err := h.chat.PostMessage(ctx, services.PostMessageCommand{
		UserID: alice.ID, ChatID: chat.ID, Text: "deployment finished",
	})
	req.NoError(err)
	_, err = h.chat.PostMessage(ctx, services.PostMessageCommand{
		UserID: alice.ID, ChatID: chat.ID, Text: "lunch time",
	})
	req.NoError(err)

	resp = h.get(t, "/api/chats/"+strconv.Itoa(int(chat.ID))+"/messages")
	req.Equal(http.StatusOK, resp.StatusCode)
	history := decodeBody[[]domain.Message](t, resp)
	req.Len(history, 2)
	req.Equal("deployment finished", history[0].Text)

	resp = h.get(t, "/api/search?q=deployment")
	req.Equal(http.StatusOK, resp.StatusCode)
	hits := decodeBody[[]searchHit](t, resp)
	req.Len(hits, 1)
	req.Equal("deployment finished", hits[0].Message.Text)

	// Missing query is a client error
	resp = h.get(t, "/api/search")
	_ = resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PostMessage(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	alice, token := h.registerUser(t, "alice_42")

	resp := h.post(t, "/api/chats", token, createChatRequest{Name: "room", IsGroup: true})
	chat := decodeBody[domain.Chat](t, resp)

	// No token, no message
	resp = h.post(t, "/api/messages", "", postMessageRequest{ChatID: chat.ID, Text: "hi"})
	_ = resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = h.post(t, "/api/messages", token, postMessageRequest{ChatID: chat.ID, Text: "a badger bit me"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	msg := decodeBody[domain.Message](t, resp)
	req.Equal(alice.ID, msg.UserID)
	req.Equal("a ****** bit me", msg.Text)

	// The message lands in the history like any websocket one
	resp = h.get(t, "/api/chats/"+strconv.Itoa(int(chat.ID))+"/messages")
	history := decodeBody[[]domain.Message](t, resp)
	req.Len(history, 1)
	req.Equal(msg.ID, history[0].ID)
}

func TestAPI_Stories(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	_, token := h.registerUser(t, "alice_42")

	resp := h.post(t, "/api/stories", token, createStoryRequest{MediaURL: "/media/sunset.jpg", MediaType: "image/jpeg"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	story := decodeBody[domain.Story](t, resp)
	req.NotZero(story.ID)

	resp = h.get(t, "/api/stories")
	req.Equal(http.StatusOK, resp.StatusCode)
	stories := decodeBody[[]domain.Story](t, resp)
	req.Len(stories, 1)

	resp = h.get(t, "/api/users/"+strconv.Itoa(int(story.UserID))+"/stories")
	req.Equal(http.StatusOK, resp.StatusCode)
	mine := decodeBody[[]domain.Story](t, resp)
	req.Len(mine, 1)

	// Stories without media are rejected
	resp = h.post(t, "/api/stories", token, createStoryRequest{Caption: "nothing to see"})
	_ = resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_OnlineUsers(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	alice, _ := h.registerUser(t, "alice_42")
	h.presence.Register(alice.ID, nopSink{})

	resp := h.get(t, "/api/users/online")
	req.Equal(http.StatusOK, resp.StatusCode)
	online := decodeBody[[]onlineUser](t, resp)
	req.Len(online, 1)
	req.Equal(alice.ID, online[0].UserID)
}

func TestAPI_MediaUpload(t *testing.T) {
	req := require.New(t)
	h := newAPIHarness(t)

	_, token := h.registerUser(t, "alice_42")

	// A tiny valid PNG header makes mimetype detection succeed
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "pixel.png")
	req.NoError(err)
	_, err = part.Write(png)
	req.NoError(err)
	req.NoError(form.Close())

	httpReq, err := http.NewRequest(http.MethodPost, h.server.URL+"/api/media", &buf)
	req.NoError(err)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	req.Equal(http.StatusCreated, resp.StatusCode)
	upload := decodeBody[Upload](t, resp)
	req.Equal("image/png", upload.MediaType)

	// And the stored file is served back
	resp = h.get(t, upload.URL)
	req.Equal(http.StatusOK, resp.StatusCode)
	served, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	req.NoError(err)
	req.Equal(png, served)

	// Text uploads are refused
	buf.Reset()
	form = multipart.NewWriter(&buf)
	part, err = form.CreateFormFile("file", "notes.txt")
	req.NoError(err)
	_, err = part.Write([]byte("just some text"))
	req.NoError(err)
	req.NoError(form.Close())

	httpReq, err = http.NewRequest(http.MethodPost, h.server.URL+"/api/media", &buf)
	req.NoError(err)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(httpReq)
	req.NoError(err)
	_ = resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

type nopSink struct{}

func (nopSink) Deliver(protocol.Envelope) {}

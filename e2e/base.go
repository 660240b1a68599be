package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-pulse/api"
	"chat-pulse/auth"
	"chat-pulse/domain"
	"chat-pulse/infrastructure/ws"
	"chat-pulse/moderation"
	"chat-pulse/observability"
	"chat-pulse/repositories"
	"chat-pulse/runtime"
	"chat-pulse/search"
	"chat-pulse/services"
)

const stepTimeout = 5 * time.Second

// BaseChatSuite wires a full server (storage, moderation, search, websocket
// and REST surfaces) on a random port, plus helpers to drive it the way a
// real client would.
type BaseChatSuite struct {
	suite.Suite
	Config Config

	httpURL string
	wsURL   string
	server  *httptest.Server

	clientStops []func()
}

func (s *BaseChatSuite) TearDownTest() {
	for _, stop := range s.clientStops {
		stop()
	}
	s.clientStops = nil
}

func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerURL != "" {
		s.httpURL = s.Config.ServerURL
		s.wsURL = "ws" + strings.TrimPrefix(s.Config.ServerURL, "http") + "/ws"
		return
	}
	s.startInProcessServer()
}

func (s *BaseChatSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *BaseChatSuite) startInProcessServer() {
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_ = db.Close()
	})

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(s.T().TempDir()))
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_ = writer.Close()
	})

	storage, err := repositories.NewBadgerStorage(db, log)
	s.Require().NoError(err)
	index := search.NewMessageIndex(writer, log)

	dict, err := moderation.LoadDictionary()
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(dict.Words, '*', log)
	s.Require().NoError(err)

	stats := observability.NewStats()
	presence := runtime.NewPresence()
	router := runtime.NewRouter(log, storage, presence, stats)
	issuer := auth.NewTokenIssuer("e2e-secret", time.Hour)
	accounts := services.NewAuthService(storage, issuer, log)
	chat := services.NewChatService(storage, &moderator, index, stats, log)

	media, err := api.NewMediaStore(s.T().TempDir(), log)
	s.Require().NoError(err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", ws.NewServer(accounts, chat, presence, router, stats, log).HandleWS)
	api.NewServer(accounts, chat, storage, index, presence, router, media,
		api.NewJWTVerifier(issuer), log).Register(mux)

	s.server = httptest.NewServer(mux)
	s.httpURL = s.server.URL
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelError)
}

// Step prints a colorized header so suite output reads as a scenario.
func (s *BaseChatSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// --- REST helpers ---

func (s *BaseChatSuite) postJSON(path, token string, body, out any) {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, s.httpURL+path, bytes.NewReader(data))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Less(resp.StatusCode, 300, "POST %s failed", path)

	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
}

func (s *BaseChatSuite) RegisterUser(username string) (domain.User, string) {
	var created struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	s.postJSON("/api/users", "", map[string]string{"username": username}, &created)
	return created.User, created.Token
}

func (s *BaseChatSuite) CreateChat(token string, name string, members []domain.UserID) domain.Chat {
	var chat domain.Chat
	s.postJSON("/api/chats", token, map[string]any{
		"name":    name,
		"isGroup": true,
		"members": members,
	}, &chat)
	return chat
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/db"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/realtime"
	"github.com/techagentng/bookclub/services"
	"github.com/techagentng/bookclub/services/jwt"
	"github.com/techagentng/bookclub/storage"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	conf := &config.Config{
		Env:                      "test",
		JWTSecret:                "test-secret",
		TokenTTL:                 time.Hour,
		LoginRateLimit:           100,
		LoginRateWindow:          time.Minute,
		AccessControlAllowOrigin: "*",
		StorageDriver:            config.StorageLocal,
		UploadDir:                dir,
	}
	for _, f := range configure {
		f(conf)
	}

	logger := zap.NewNop().Sugar()
	gormDB, err := db.Open(sqlite.Open(filepath.Join(dir, "bookclub.db")), true)
	require.NoError(t, err)

	authRepo := db.NewAuthRepo(gormDB)
	bookRepo := db.NewBookRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)
	store, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	hub := realtime.NewHub(logger)
	messageService := services.NewMessageService(messageRepo, authRepo, hub, nil, logger)
	s := &Server{
		Config:         conf,
		Logger:         logger,
		DB:             gormDB,
		Gate:           jwt.NewGate(conf.JWTSecret, authRepo),
		AuthService:    services.NewAuthService(authRepo, conf, nil, logger),
		BookService:    services.NewBookService(bookRepo, logger),
		MessageService: messageService,
		MediaService:   services.NewMediaService(store, authRepo, logger),
		Realtime: realtime.NewManager(hub, messageService, realtime.Options{
			SendBuffer:   16,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: time.Second,
		}, logger),
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		_ = gormDB.Close()
	})
	return &testServer{Server: srv, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

type account struct {
	id    string
	token string
}

func (ts *testServer) signup(t *testing.T, first, last, email string) account {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"firstName": first,
		"lastName":  last,
		"email":     email,
		"password":  "secret123",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return account{id: body["userId"].(string), token: body["token"].(string)}
}

func (ts *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(ts.wsURL(token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	require.Equal(t, models.EventConnected, readEvent(t, ws).Event)
	return ws
}

func (ts *testServer) wsURL(token string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
}

func readEvent(t *testing.T, ws *websocket.Conn) models.Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env models.Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func sendEvent(t *testing.T, ws *websocket.Conn, receiverID, text string) {
	t.Helper()
	data, err := json.Marshal(models.SendMessageEvent{ReceiverID: receiverID, Text: text})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(models.Envelope{Event: models.EventSendMessage, Data: data}))
}

func decodeMessage(t *testing.T, env models.Envelope) models.Message {
	t.Helper()
	require.Equal(t, models.EventReceiveMessage, env.Event)
	var m models.Message
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signup(t, "Ada", "Lovelace", "ada@example.com")

	t.Run("should reject a duplicate email", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
			"firstName": "Ada", "lastName": "L", "email": "ADA@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "User exists already, login instead", body["message"])
	})

	t.Run("should reject a bad password with 403", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email": "ada@example.com", "password": "wrong-password",
		})
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "Login failed. Invalid credentials.", body["message"])
	})

	t.Run("should log in and load the profile", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email": "ada@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, ada.id, body["userId"])

		status, body = ts.do(t, http.MethodGet, "/api/v1/users/me", body["token"].(string), nil)
		require.Equal(t, http.StatusOK, status)
		user := body["user"].(map[string]interface{})
		require.Equal(t, "Ada", user["firstName"])
		require.Equal(t, "Ada L", user["username"])
	})

	t.Run("should require a token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Unauthorized", body["message"])
	})

	t.Run("should revoke the token on logout", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodGet, "/api/v1/users/logout", ada.token, nil)
		require.Equal(t, http.StatusOK, status)

		status, body := ts.do(t, http.MethodGet, "/api/v1/users/me", ada.token, nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Token has been revoked", body["message"])

		_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(ada.token), nil)
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.LoginRateLimit = 2 })
	ts.signup(t, "Ada", "Lovelace", "ada@example.com")

	attempt := func() int {
		status, _ := ts.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"email": "ada@example.com", "password": "wrong-password",
		})
		return status
	}
	require.Equal(t, http.StatusForbidden, attempt())
	require.Equal(t, http.StatusForbidden, attempt())
	require.Equal(t, http.StatusTooManyRequests, attempt())
}

func TestMessagingEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signup(t, "Ada", "Lovelace", "ada@example.com")
	grace := ts.signup(t, "Grace", "Hopper", "grace@example.com")

	status, body := ts.do(t, http.MethodPost, "/api/v1/messages", ada.token, map[string]string{
		"receiverId": grace.id, "text": "hello grace",
	})
	require.Equal(t, http.StatusCreated, status)
	message := body["message"].(map[string]interface{})
	require.Equal(t, ada.id, message["senderId"])
	require.Equal(t, false, message["read"])

	t.Run("should reject a message without text", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/messages", ada.token, map[string]string{
			"receiverId": grace.id,
		})
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "Missing fields", body["message"])
	})

	t.Run("should count the unread message in the chat list", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/api/v1/messages/chats", grace.token, nil)
		require.Equal(t, http.StatusOK, status)
		chats := body["chats"].([]interface{})
		require.Len(t, chats, 1)
		chat := chats[0].(map[string]interface{})
		require.Equal(t, ada.id, chat["otherUserId"])
		require.Equal(t, "Ada", chat["firstName"])
		require.Equal(t, "hello grace", chat["lastMessage"])
		require.EqualValues(t, 1, chat["unreadCount"])
	})

	t.Run("should mark the conversation read when the receiver opens it", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/api/v1/messages/conversation/"+ada.id, grace.token, nil)
		require.Equal(t, http.StatusOK, status)
		messages := body["messages"].([]interface{})
		require.Len(t, messages, 1)
		require.Equal(t, true, messages[0].(map[string]interface{})["read"])

		_, body = ts.do(t, http.MethodGet, "/api/v1/messages/chats", grace.token, nil)
		chat := body["chats"].([]interface{})[0].(map[string]interface{})
		require.EqualValues(t, 0, chat["unreadCount"])
	})

	t.Run("should forbid reading another user's messages", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/api/v1/messages/user/"+grace.id, ada.token, nil)
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "Not authorized to view these messages.", body["message"])

		status, body = ts.do(t, http.MethodGet, "/api/v1/messages/user/"+ada.id, ada.token, nil)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["messages"], 1)
	})
}

func TestSocketDelivery(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signup(t, "Ada", "Lovelace", "ada@example.com")
	grace := ts.signup(t, "Grace", "Hopper", "grace@example.com")
	carol := ts.signup(t, "Carol", "Shaw", "carol@example.com")

	t.Run("should refuse a bad token before upgrading", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL("not-a-token"), nil)
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	adaWS := ts.dial(t, ada.token)
	graceWS := ts.dial(t, grace.token)
	carolWS := ts.dial(t, carol.token)

	t.Run("should deliver to both participants only", func(t *testing.T) {
		sendEvent(t, adaWS, grace.id, "over the wire")

		got := decodeMessage(t, readEvent(t, graceWS))
		require.Equal(t, "over the wire", got.Text)
		require.Equal(t, ada.id, got.SenderID.String())

		echo := decodeMessage(t, readEvent(t, adaWS))
		require.Equal(t, got.ID, echo.ID)

		// the next frame carol sees must be the one addressed to her
		sendEvent(t, adaWS, carol.id, "for carol")
		require.Equal(t, "for carol", decodeMessage(t, readEvent(t, carolWS)).Text)
		require.Equal(t, "for carol", decodeMessage(t, readEvent(t, adaWS)).Text)
	})

	t.Run("should report missing fields to the sender only", func(t *testing.T) {
		sendEvent(t, adaWS, grace.id, "   ")

		env := readEvent(t, adaWS)
		require.Equal(t, models.EventError, env.Event)
		var e models.ErrorEvent
		require.NoError(t, json.Unmarshal(env.Data, &e))
		require.Equal(t, "Missing fields", e.Message)

		_, body := ts.do(t, http.MethodGet, "/api/v1/messages", grace.token, nil)
		require.Len(t, body["messages"], 1)
	})

	t.Run("should push request endpoint messages to the socket", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, "/api/v1/messages", grace.token, map[string]string{
			"receiverId": ada.id, "text": "sent over http",
		})
		require.Equal(t, http.StatusCreated, status)
		require.Equal(t, "sent over http", decodeMessage(t, readEvent(t, adaWS)).Text)
		require.Equal(t, "sent over http", decodeMessage(t, readEvent(t, graceWS)).Text)
	})
}

func TestBookEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signup(t, "Ada", "Lovelace", "ada@example.com")
	grace := ts.signup(t, "Grace", "Hopper", "grace@example.com")

	status, body := ts.do(t, http.MethodPost, "/api/v1/books", ada.token, map[string]string{
		"ISBN":   "9780262033848",
		"title":  "Introduction to Algorithms",
		"author": "Cormen",
		"genre":  "Computer Science",
		"review": "Dense but rewarding",
	})
	require.Equal(t, http.StatusCreated, status, body)
	bookID := body["book"].(map[string]interface{})["id"].(string)

	t.Run("should reject a short ISBN", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, "/api/v1/books", ada.token, map[string]string{
			"ISBN": "123", "title": "T", "author": "A", "genre": "G", "review": "long enough",
		})
		require.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("should toggle a like", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPatch, "/api/v1/books/like/"+bookID, grace.token, nil)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "Book liked", body["message"])
		require.EqualValues(t, 1, body["totalLikes"])

		_, body = ts.do(t, http.MethodPatch, "/api/v1/books/like/"+bookID, grace.token, nil)
		require.Equal(t, "Book unliked", body["message"])
		require.Equal(t, false, body["likedByUser"])
	})

	t.Run("should only let the creator delete", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodDelete, "/api/v1/books/"+bookID, grace.token, nil)
		require.Equal(t, http.StatusForbidden, status)

		status, _ = ts.do(t, http.MethodDelete, "/api/v1/books/"+bookID, ada.token, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = ts.do(t, http.MethodGet, "/api/v1/books/"+bookID, ada.token, nil)
		require.Equal(t, http.StatusNotFound, status)
	})
}

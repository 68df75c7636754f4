package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dm-relay/auth"
	"dm-relay/domain"
	"dm-relay/domain/event"
	"dm-relay/errors"
	"dm-relay/mocks"
	"dm-relay/runtime"
	"dm-relay/services"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type fixture struct {
	server   *Server
	registry *runtime.Registry
	authSvc  *mocks.MockIAuthService
	userSvc  *mocks.MockIUserService
	chatSvc  *mocks.MockIChatService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	registry := runtime.NewRegistry()
	authSvc := mocks.NewMockIAuthService(ctrl)
	userSvc := mocks.NewMockIUserService(ctrl)
	chatSvc := mocks.NewMockIChatService(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := NewServer("127.0.0.1:0", auth.NewVerifier(), authSvc, userSvc, chatSvc, registry, log)
	return fixture{server: server, registry: registry, authSvc: authSvc, userSvc: userSvc, chatSvc: chatSvc}
}

func bearerHeader(t *testing.T, userID int64, displayName string) http.Header {
	t.Helper()
	token, err := auth.GenerateToken(userID, displayName, time.Hour)
	require.NoError(t, err)
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestServer_Handshake(t *testing.T) {
	f := newFixture(t)
	httpServer := httptest.NewServer(f.server.Handler())
	defer httpServer.Close()

	t.Run("should reject a missing credential before the upgrade", func(t *testing.T) {
		req := require.New(t)

		response, err := http.Get(httpServer.URL + "/ws")
		req.NoError(err)
		defer response.Body.Close()

		req.Equal(http.StatusUnauthorized, response.StatusCode)
	})

	t.Run("should reject an invalid credential with a distinct status", func(t *testing.T) {
		req := require.New(t)

		request, err := http.NewRequest(http.MethodGet, httpServer.URL+"/ws", nil)
		req.NoError(err)
		request.Header.Set("Authorization", "Bearer not-a-token")

		response, err := http.DefaultClient.Do(request)
		req.NoError(err)
		defer response.Body.Close()

		req.Equal(http.StatusForbidden, response.StatusCode)
	})
}

func TestServer_Accounts(t *testing.T) {
	f := newFixture(t)
	httpServer := httptest.NewServer(f.server.Handler())
	defer httpServer.Close()

	postJSON := func(t *testing.T, path string, payload any) *http.Response {
		t.Helper()
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		response, err := http.Post(httpServer.URL+path, "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		return response
	}

	t.Run("should create an account and hand back a token", func(t *testing.T) {
		req := require.New(t)
		f.authSvc.EXPECT().
			Register("alice", "Alice", "ComplexPass123!").
			Return(services.Token("issued-token"), nil)

		response := postJSON(t, "/register", registerRequest{
			Username: "alice", DisplayName: "Alice", Password: "ComplexPass123!",
		})
		defer response.Body.Close()

		req.Equal(http.StatusCreated, response.StatusCode)
		var reply tokenResponse
		req.NoError(json.NewDecoder(response.Body).Decode(&reply))
		req.Equal("issued-token", reply.Token)
	})

	t.Run("should report a taken username as a conflict", func(t *testing.T) {
		req := require.New(t)
		f.authSvc.EXPECT().
			Register("alice", "Alice", "ComplexPass123!").
			Return(services.Token(""), errors.ErrUserAlreadyExists)

		response := postJSON(t, "/register", registerRequest{
			Username: "alice", DisplayName: "Alice", Password: "ComplexPass123!",
		})
		defer response.Body.Close()

		req.Equal(http.StatusConflict, response.StatusCode)
	})

	t.Run("should reject bad credentials on login", func(t *testing.T) {
		req := require.New(t)
		f.authSvc.EXPECT().
			Login("alice", "wrong").
			Return(services.Token(""), errors.ErrInvalidCredentials)

		response := postJSON(t, "/login", loginRequest{Username: "alice", Password: "wrong"})
		defer response.Body.Close()

		req.Equal(http.StatusUnauthorized, response.StatusCode)
	})
}

func TestServer_Search(t *testing.T) {
	f := newFixture(t)
	httpServer := httptest.NewServer(f.server.Handler())
	defer httpServer.Close()

	t.Run("should require a credential", func(t *testing.T) {
		req := require.New(t)

		response, err := http.Get(httpServer.URL + "/users/search?q=bo")
		req.NoError(err)
		defer response.Body.Close()

		req.Equal(http.StatusUnauthorized, response.StatusCode)
	})

	t.Run("should exclude the caller from directory results", func(t *testing.T) {
		req := require.New(t)
		f.userSvc.EXPECT().
			Search(gomock.Any(), "bo", domain.UserID(1)).
			Return([]domain.Profile{{ID: 2, Username: "bob", DisplayName: "Bob"}}, nil)

		request, err := http.NewRequest(http.MethodGet, httpServer.URL+"/users/search?q=bo", nil)
		req.NoError(err)
		request.Header = bearerHeader(t, 1, "Alice")

		response, err := http.DefaultClient.Do(request)
		req.NoError(err)
		defer response.Body.Close()

		req.Equal(http.StatusOK, response.StatusCode)
		var profiles []domain.Profile
		req.NoError(json.NewDecoder(response.Body).Decode(&profiles))
		req.Len(profiles, 1)
		req.Equal("bob", profiles[0].Username)
	})
}

func TestServer_Session(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := newFixture(t)
	go func() { _ = f.server.Start() }()
	defer func() { _ = f.server.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return f.server.Addr() != "" },
		time.Second, 10*time.Millisecond)

	alice := domain.UserIdentity{ID: 1, DisplayName: "Alice"}
	conn, _, err := websocket.Dial(ctx, "ws://"+f.server.Addr()+"/ws", &websocket.DialOptions{
		HTTPHeader: bearerHeader(t, int64(alice.ID), alice.DisplayName),
	})
	req.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The session is live once its sink is bound to the personal address
	require.Eventually(t, func() bool { return f.registry.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)

	t.Run("should acknowledge a send with the persisted view", func(t *testing.T) {
		view := domain.MessageView{
			ID: 42, FromUserID: 1, ToUserID: 2, Body: "hello",
			FromDisplayName: "Alice", ToDisplayName: "Bob",
		}
		f.chatSvc.EXPECT().
			Send(gomock.Any(), alice, domain.UserID(2), "hello").
			Return(view, nil)

		err := wsjson.Write(ctx, conn, ClientFrame{Type: TypeSend, ToUserID: 2, Body: "hello"})
		require.NoError(t, err)

		var reply ServerFrame
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		require.Equal(t, TypeSent, reply.Type)
		require.NotNil(t, reply.Message)
		require.Equal(t, view, *reply.Message)
	})

	t.Run("should report an unknown recipient without closing the session", func(t *testing.T) {
		f.chatSvc.EXPECT().
			Send(gomock.Any(), alice, domain.UserID(999), "hello?").
			Return(domain.MessageView{}, errors.ErrRecipientNotFound)

		err := wsjson.Write(ctx, conn, ClientFrame{Type: TypeSend, ToUserID: 999, Body: "hello?"})
		require.NoError(t, err)

		var reply ServerFrame
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		require.Equal(t, TypeError, reply.Type)
		require.Equal(t, errors.CodeRecipientNotFound, reply.Code)
	})

	t.Run("should reject a malformed frame with a protocol error", func(t *testing.T) {
		err := wsjson.Write(ctx, conn, ClientFrame{Type: "shout"})
		require.NoError(t, err)

		var reply ServerFrame
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		require.Equal(t, TypeError, reply.Type)
		require.Equal(t, errors.CodeInvalidPayload, reply.Code)
	})

	t.Run("should push relay deliveries as received frames", func(t *testing.T) {
		view := domain.MessageView{
			ID: 43, FromUserID: 2, ToUserID: 1, Body: "hey",
			FromDisplayName: "Bob", ToDisplayName: "Alice",
		}

		sinks := f.registry.SinksFor(alice.ID)
		require.Len(t, sinks, 1)
		require.NoError(t, sinks[0].Consume(ctx, event.MessageDelivered{To: alice.ID, View: view}))

		var reply ServerFrame
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		require.Equal(t, TypeReceived, reply.Type)
		require.NotNil(t, reply.Message)
		require.Equal(t, view, *reply.Message)
	})

	t.Run("should unbind the personal address on disconnect", func(t *testing.T) {
		require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))

		require.Eventually(t, func() bool { return f.registry.ConnectionCount() == 0 },
			time.Second, 10*time.Millisecond)
	})
}

package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"dm-relay/auth"
	"dm-relay/contract"
	"dm-relay/errors"
	"dm-relay/services"

	"nhooyr.io/websocket"
)

// Server is the outer HTTP surface: account endpoints, the user
// directory, and the WebSocket upgrade at /ws. Admission happens
// before the upgrade so a rejected client gets a plain HTTP status,
// never a half-open socket.
type Server struct {
	address     string
	listener    net.Listener
	server      *http.Server
	quit        chan struct{}
	verifier    auth.Verifier
	authService services.IAuthService
	userService services.IUserService
	chatService services.IChatService
	registry    contract.IRegistry
	log         *slog.Logger
}

func NewServer(address string, verifier auth.Verifier,
	authService services.IAuthService, userService services.IUserService,
	chatService services.IChatService, registry contract.IRegistry, log *slog.Logger) *Server {
	return &Server{
		address:     address,
		quit:        make(chan struct{}),
		verifier:    verifier,
		authService: authService,
		userService: userService,
		chatService: chatService,
		registry:    registry,
		log:         log,
	}
}

// Handler builds the route table. Exposed separately so tests can
// mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /users/search", s.handleSearch)
	mux.HandleFunc("GET /ws", s.handleSocket)
	return mux
}

// Start listens and serves until Stop is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{Handler: s.Handler()}

	s.log.Info("Relay listening", "address", listener.Addr().String())

	if err := s.server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and signals every live session to
// terminate. Shutdown alone is not enough: upgraded connections are
// hijacked from the HTTP server, so they watch the quit channel.
func (s *Server) Stop(ctx context.Context) error {
	close(s.quit)
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleSocket admits the credential, upgrades, and serves the
// session until it ends. A missing credential and a rejected one are
// distinct statuses so a client can tell "authenticate first" from
// "token no longer valid".
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := s.verifier.Admit(bearerToken(r))
	if err != nil {
		status := http.StatusForbidden
		if stderrors.Is(err, errors.ErrMissingCredential) {
			status = http.StatusUnauthorized
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	NewSession(conn, identity, s.chatService, s.registry, s.log).Run(ctx)
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	token, err := s.authService.Register(request.Username, request.DisplayName, request.Password)
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case stderrors.Is(err, errors.ErrInvalidRegistration), stderrors.Is(err, errors.ErrInvalidPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		s.log.Error("Registration failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	token, err := s.authService.Login(request.Username, request.Password)
	switch {
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case err != nil:
		s.log.Error("Login failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	identity, err := s.verifier.Admit(bearerToken(r))
	if err != nil {
		status := http.StatusForbidden
		if stderrors.Is(err, errors.ErrMissingCredential) {
			status = http.StatusUnauthorized
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	profiles, err := s.userService.Search(r.Context(), r.URL.Query().Get("q"), identity.ID)
	if err != nil {
		s.log.Error("Directory search failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

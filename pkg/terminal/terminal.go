// Package terminal connects interpreter sessions to their users: the local
// console and websocket clients.
package terminal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/antibyte/retrobasic/pkg/auth"
	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/shared"
	"github.com/antibyte/retrobasic/pkg/tinybasic"

	"github.com/gorilla/websocket"
)

// TerminalHandler serves interpreter sessions over websockets, one
// TinyBASIC instance per connection.
type TerminalHandler struct {
	ctx          context.Context
	clients      *ClientManager
	upgrader     websocket.Upgrader
	requireToken bool
}

// NewTerminalHandler creates a handler. Sessions end when ctx is cancelled.
func NewTerminalHandler(ctx context.Context) *TerminalHandler {
	h := &TerminalHandler{
		ctx:          ctx,
		clients:      NewClientManager(),
		requireToken: auth.TokenRequired(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients) and, when allowed_origins is set, only the listed origins.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	allowed := configuration.GetString("Server", "allowed_origins", "")
	if origin == "" || allowed == "" {
		return true
	}
	for _, o := range strings.Split(allowed, ",") {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	logger.TerminalWarn("WebSocket request from disallowed origin rejected: %s", origin)
	return false
}

// ClientCount returns the number of connected sessions.
func (h *TerminalHandler) ClientCount() int {
	return h.clients.GetClientCount()
}

// Shutdown disconnects every client.
func (h *TerminalHandler) Shutdown() {
	h.clients.CloseAll()
}

// sessionFromRequest picks the session ID for a connection. A valid token
// supplies it; without a token a fresh ID is issued unless tokens are
// required.
func (h *TerminalHandler) sessionFromRequest(r *http.Request) (string, error) {
	token, err := auth.ExtractTokenFromRequest(r)
	if errors.Is(err, auth.ErrNoToken) && !h.requireToken {
		return auth.NewSessionID(), nil
	}
	if err != nil {
		return "", err
	}
	claims, err := auth.ValidateSessionToken(token)
	if err != nil {
		return "", err
	}
	if err := ValidateSessionID(claims.SessionID); err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

// HandleWebSocket upgrades the request and starts a session for it.
func (h *TerminalHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ipAddress := r.RemoteAddr
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ipAddress = strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}

	sessionID, err := h.sessionFromRequest(r)
	if err != nil {
		logger.Warn(logger.AreaAuth, "WebSocket from %s rejected: %v", ipAddress, err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.clients.HasClient(sessionID) {
		logger.Warn(logger.AreaSession, "Session %s from %s is already connected", sessionID, ipAddress)
		http.Error(w, "Session already connected", http.StatusConflict)
		return
	}
	if h.clients.Full() {
		logger.TerminalWarn("Maximum number of clients reached, rejecting %s", ipAddress)
		http.Error(w, "Server overloaded", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.TerminalWarn("Upgrade for %s failed: %v", ipAddress, err)
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	c := newClient(conn, h, sessionID, ipAddress, cancel)
	if err := h.clients.AddClient(c); err != nil {
		logger.Warn(logger.AreaSession, "Session %s from %s refused: %v", sessionID, ipAddress, err)
		cancel()
		conn.WriteJSON(shared.Message{Type: shared.MessageTypeError, Content: err.Error()})
		conn.Close()
		return
	}

	logger.Info(logger.AreaSession, "Session %s connected from %s", sessionID, ipAddress)
	go c.writePump()
	go c.readPump()
	c.sendMessage(shared.Message{Type: shared.MessageTypeSession, SessionID: sessionID})
	go h.runSession(ctx, c)
}

// cleanupClient is called once the read side of a connection is gone.
func (h *TerminalHandler) cleanupClient(c *Client) {
	h.clients.RemoveClient(c.sessionID)
	c.close()
	logger.Info(logger.AreaSession, "Session %s disconnected", c.sessionID)
}

// runSession feeds the client's lines to its interpreter until QUIT, the
// connection ends or the server shuts down.
func (h *TerminalHandler) runSession(ctx context.Context, c *Client) {
	defer c.close()

	b := tinybasic.NewTinyBASIC(c, c)
	b.SetSessionID(c.sessionID)

	for {
		line, err := c.nextLine(ctx)
		if err != nil {
			logger.Debug(logger.AreaSession, "Session %s input ended: %v", c.sessionID, err)
			return
		}

		lineCtx := c.beginLine(ctx)
		err = b.Execute(lineCtx, line)
		c.endLine()
		if err != nil {
			if !errors.Is(err, tinybasic.ErrQuit) {
				logger.Debug(logger.AreaSession, "Session %s stopped: %v", c.sessionID, err)
			}
			return
		}
	}
}

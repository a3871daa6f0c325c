package auth

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// SessionResponse definiert die Struktur für Session-Antworten
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
	Token     string `json:"token,omitempty"`
	Message   string `json:"message"`
}

// setCORSHeaders allows the browser terminal to call the API from any origin.
func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Content-Type", "application/json")
}

// HandleCreateSession creates a new session ID and a token for it. The token
// is returned in the body and set as a cookie for the websocket handshake.
func HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		logger.AuthWarn("Invalid method for session creation: %s", r.Method)
		respondWithError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := NewSessionID()
	token, err := GenerateSessionToken(sessionID, "guest")
	if err != nil {
		logger.AuthError("Session token for %s failed: %v", sessionID, err)
		respondWithError(w, "Could not create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(getTokenExpiration().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.AuthInfo("New session created: %s for IP: %s", sessionID, getClientIP(r))
	json.NewEncoder(w).Encode(SessionResponse{
		Success:   true,
		SessionID: sessionID,
		Token:     token,
		Message:   "Session created successfully",
	})
}

// HandleTokenValidation validiert ein JWT-Token
func HandleTokenValidation(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "GET, POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	RequireSessionToken(reportValidToken)(w, r)
}

// reportValidToken answers for a request RequireSessionToken has let through.
func reportValidToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	logger.AuthInfo("Token validated for session: %s", claims.SessionID)
	json.NewEncoder(w).Encode(SessionResponse{
		Success:   true,
		SessionID: claims.SessionID,
		Message:   "Token valid",
	})
}

// NewSessionID creates a unique session ID
func NewSessionID() string {
	return uuid.NewString()
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// respondWithError sendet eine Fehlerantwort als JSON
func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SessionResponse{
		Success: false,
		Message: message,
	})
}

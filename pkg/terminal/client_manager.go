package terminal

import (
	"errors"
	"sync"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// Konstanten für Client-Management
const (
	MaxClientsDefault = 100 // Maximale Anzahl gleichzeitiger Clients
)

var (
	ErrServerFull       = errors.New("server full")
	ErrDuplicateSession = errors.New("session already connected")
)

// ClientManager verwaltet Client-Verbindungen mit Session-IDs
type ClientManager struct {
	clients    map[string]*Client // sessionID -> Client
	maxClients int
	mu         sync.RWMutex
}

// NewClientManager erstellt einen neuen ClientManager
func NewClientManager() *ClientManager {
	maxClients := configuration.GetInt("Server", "max_clients", MaxClientsDefault)
	if maxClients < 1 {
		maxClients = MaxClientsDefault
	}
	return &ClientManager{
		clients:    make(map[string]*Client),
		maxClients: maxClients,
	}
}

// AddClient registers client under its session ID. It fails when the
// server is full or the session already has a connection.
func (cm *ClientManager) AddClient(client *Client) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, exists := cm.clients[client.sessionID]; exists {
		return ErrDuplicateSession
	}
	if len(cm.clients) >= cm.maxClients {
		return ErrServerFull
	}
	cm.clients[client.sessionID] = client
	logger.Debug(logger.AreaSession, "Client added for session %s (%d connected)", client.sessionID, len(cm.clients))
	return nil
}

// RemoveClient entfernt einen Client
func (cm *ClientManager) RemoveClient(sessionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, exists := cm.clients[sessionID]; exists {
		delete(cm.clients, sessionID)
		logger.Debug(logger.AreaSession, "Client removed for session %s", sessionID)
	}
}

// Full reports whether another client would be refused.
func (cm *ClientManager) Full() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients) >= cm.maxClients
}

// GetClientCount gibt die Anzahl der verbundenen Clients zurück
func (cm *ClientManager) GetClientCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// HasClient prüft, ob ein Client für die Session existiert
func (cm *ClientManager) HasClient(sessionID string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	_, exists := cm.clients[sessionID]
	return exists
}

// CloseAll shuts down every connected client.
func (cm *ClientManager) CloseAll() {
	cm.mu.RLock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

// Package session hosts server-side intake sessions over WebSocket: one
// intake controller per connected client.
package session

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Manager tracks the active WebSocket connection per mother and session id.
// A second connection for the same pair replaces the first; concurrent
// editing by multiple clients of one mother's intake is not supported.
type Manager struct {
	mu     sync.RWMutex
	active map[int64]map[string]*websocket.Conn
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{active: make(map[int64]map[string]*websocket.Conn)}
}

// GetActive returns the active connection for a mother and session.
func (m *Manager) GetActive(motherID int64, sessionID string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.active[motherID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Register adds a connection for a mother/session, closing any replaced one.
func (m *Manager) Register(motherID int64, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[motherID]; !exists {
		m.active[motherID] = make(map[string]*websocket.Conn)
	}

	if existing, exists := m.active[motherID][sessionID]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}

	m.active[motherID][sessionID] = conn
	slog.Info("Intake session registered", "mother_id", motherID, "session_id", sessionID)
}

// Unregister removes a connection for a mother/session. Stale unregisters
// (the slot was already replaced) are ignored.
func (m *Manager) Unregister(motherID int64, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[motherID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, motherID)
			}
			slog.Info("Intake session unregistered", "mother_id", motherID, "session_id", sessionID)
		}
	}
}

package session

import (
	"strconv"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestManagerRegister(t *testing.T) {
	m := NewManager()
	conn := &websocket.Conn{}

	m.Register(7, "tab-1", conn)

	if active := m.GetActive(7, "tab-1"); active != conn {
		t.Errorf("Expected connection %v, got %v", conn, active)
	}
}

func TestManagerGetActiveUnknown(t *testing.T) {
	m := NewManager()

	if active := m.GetActive(7, "tab-1"); active != nil {
		t.Errorf("Expected nil connection, got %v", active)
	}
}

func TestManagerUnregister(t *testing.T) {
	m := NewManager()
	conn := &websocket.Conn{}

	m.Register(7, "tab-1", conn)
	m.Unregister(7, "tab-1", conn)

	if active := m.GetActive(7, "tab-1"); active != nil {
		t.Errorf("Expected nil connection, got %v", active)
	}
}

func TestManagerUnregisterStale(t *testing.T) {
	m := NewManager()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	m.Register(7, "tab-1", conn1)
	m.Register(7, "tab-2", conn2)

	// Unregistering tab-1 must not touch tab-2.
	m.Unregister(7, "tab-1", conn1)

	if active := m.GetActive(7, "tab-2"); active != conn2 {
		t.Errorf("Expected connection %v, got %v", conn2, active)
	}
}

func TestManagerUnregisterReplacedIsIgnored(t *testing.T) {
	m := NewManager()
	old := &websocket.Conn{}
	replacement := &websocket.Conn{}

	m.Register(7, "tab-1", old)
	m.active[7]["tab-1"] = replacement // simulate replacement without closing old

	// The old connection's deferred unregister fires after replacement.
	m.Unregister(7, "tab-1", old)

	if active := m.GetActive(7, "tab-1"); active != replacement {
		t.Errorf("Expected replacement to survive stale unregister, got %v", active)
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()

	go func() {
		for i := 0; i < 1000; i++ {
			m.Register(7, "tab-"+strconv.Itoa(i), &websocket.Conn{})
		}
	}()

	go func() {
		for i := 0; i < 1000; i++ {
			m.GetActive(7, "tab-"+strconv.Itoa(i))
		}
	}()

	time.Sleep(100 * time.Millisecond)
}

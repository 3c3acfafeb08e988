package websocketPkg

import (
	"sync"
	"time"
)

// Conn is the part of a websocket connection the registry needs.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type IRegistry interface {
	Register(userID string, conn Conn)
	Unregister(userID string, conn Conn)
	Send(userID string, v interface{}) (bool, error)
	IsConnected(userID string) bool
}

type client struct {
	conn        Conn
	mu          sync.Mutex
	connectedAt time.Time
}

// Registry tracks at most one live connection per user. Writes to a single
// connection are serialised.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Register replaces and closes any previous connection of the user.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	prev := r.clients[userID]
	r.clients[userID] = &client{conn: conn, connectedAt: time.Now()}
	r.mu.Unlock()

	if prev != nil && prev.conn != conn {
		_ = prev.conn.Close()
	}
}

// Unregister removes the user's entry only if it still holds conn, so a
// late close of a replaced connection does not evict its successor.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[userID]; ok && c.conn == conn {
		delete(r.clients, userID)
	}
}

// Send writes v to the user's connection. It reports false without error
// when the user is not connected; a failed write drops the connection.
func (r *Registry) Send(userID string, v interface{}) (bool, error) {
	r.mu.RLock()
	c, ok := r.clients[userID]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}

	c.mu.Lock()
	err := c.conn.WriteJSON(v)
	c.mu.Unlock()
	if err != nil {
		r.Unregister(userID, c.conn)
		_ = c.conn.Close()
		return false, err
	}
	return true, nil
}

func (r *Registry) IsConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[userID]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

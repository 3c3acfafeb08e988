package websocketPkg

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written []interface{}
	closed  bool
	failing bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestSendOnlyWhenConnected(t *testing.T) {
	r := NewRegistry()

	sent, err := r.Send("user-1", "hello")
	require.NoError(t, err)
	assert.False(t, sent)

	conn := &fakeConn{}
	r.Register("user-1", conn)
	assert.True(t, r.IsConnected("user-1"))

	sent, err = r.Send("user-1", "hello")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []interface{}{"hello"}, conn.written)
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	r := NewRegistry()
	first, second := &fakeConn{}, &fakeConn{}

	r.Register("user-1", first)
	r.Register("user-1", second)
	assert.True(t, first.closed)
	assert.Equal(t, 1, r.Count())

	// A late close of the replaced connection must not evict the new one.
	r.Unregister("user-1", first)
	assert.True(t, r.IsConnected("user-1"))

	r.Unregister("user-1", second)
	assert.False(t, r.IsConnected("user-1"))
}

func TestSendFailureDropsConnection(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{failing: true}
	r.Register("user-1", conn)

	sent, err := r.Send("user-1", "hello")
	assert.Error(t, err)
	assert.False(t, sent)
	assert.False(t, r.IsConnected("user-1"))
	assert.True(t, conn.closed)
}

func TestConcurrentSend(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	r.Register("user-1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Send("user-1", i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, conn.written, 50)
}

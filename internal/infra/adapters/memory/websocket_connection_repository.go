package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/domain/runtime"
)

// WebsocketConnectionRepository - все открытые соединения, в том числе ещё не вошедшие в комнату
type WebsocketConnectionRepository interface {
	Add(conn runtime.Outbound)
	Remove(id uuid.UUID)
	Get(id uuid.UUID) (runtime.Outbound, bool)
	Count() int

	// CloseAll закрывает все соединения при остановке сервера
	CloseAll()
}

type wsConnectionRepository struct {
	// wsConns хранит map[conn_id]Outbound
	wsConns map[uuid.UUID]runtime.Outbound

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]runtime.Outbound, 10),
	}
}

func (w *wsConnectionRepository) Add(conn runtime.Outbound) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.wsConns[conn.ID()] = conn

	metric.SetWSActiveConnections(len(w.wsConns))
}

func (w *wsConnectionRepository) Remove(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.wsConns, id)

	metric.SetWSActiveConnections(len(w.wsConns))
}

func (w *wsConnectionRepository) Get(id uuid.UUID) (runtime.Outbound, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[id]
	return conn, ok
}

func (w *wsConnectionRepository) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.wsConns)
}

func (w *wsConnectionRepository) CloseAll() {
	w.mu.RLock()
	conns := lo.Values(w.wsConns)
	w.mu.RUnlock()

	// Close не должен вызываться под блокировкой: соединение само удаляет себя через Remove
	for _, conn := range conns {
		conn.Close()
	}
}

package memory

import (
	"context"
	"sync"

	"github.com/qrave1/RoomRelay/internal/domain/models"
)

// DefaultJournalCapacity - сколько последних закрытий держим, когда postgres не подключён
const DefaultJournalCapacity = 100

type EvictionJournalRepository interface {
	Record(ctx context.Context, record models.EvictionRecord) error
	List(ctx context.Context, limit int) ([]models.EvictionRecord, error)
}

type evictionJournalRepository struct {
	capacity int
	records  []models.EvictionRecord
	mu       sync.Mutex
}

func NewEvictionJournalRepository(capacity int) EvictionJournalRepository {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}

	return &evictionJournalRepository{
		capacity: capacity,
		records:  make([]models.EvictionRecord, 0, capacity),
	}
}

func (r *evictionJournalRepository) Record(_ context.Context, record models.EvictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == r.capacity {
		r.records = r.records[1:]
	}

	r.records = append(r.records, record)

	return nil
}

// List отдаёт записи от новых к старым
func (r *evictionJournalRepository) List(_ context.Context, limit int) ([]models.EvictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}

	out := make([]models.EvictionRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}

	return out, nil
}

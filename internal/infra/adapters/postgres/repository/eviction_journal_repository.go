package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomRelay/internal/domain/models"
)

// EvictionJournalRepository - журнал закрытых комнат в postgres. Только для аудита, состояние из него не восстанавливается.
type EvictionJournalRepository interface {
	Record(ctx context.Context, record models.EvictionRecord) error
	List(ctx context.Context, limit int) ([]models.EvictionRecord, error)
}

type evictionJournalRepo struct {
	db *sqlx.DB
}

func NewEvictionJournalRepo(db *sqlx.DB) EvictionJournalRepository {
	return &evictionJournalRepo{db: db}
}

func (r *evictionJournalRepo) Record(ctx context.Context, record models.EvictionRecord) error {
	_, err := r.db.NamedExecContext(
		ctx,
		`INSERT INTO room_evictions
			(room_id, reason, created_at, last_activity_at, evicted_at, peak_occupancy, sessions_notified)
		VALUES
			(:room_id, :reason, :created_at, :last_activity_at, :evicted_at, :peak_occupancy, :sessions_notified)`,
		record,
	)
	if err != nil {
		return fmt.Errorf("insert room eviction: %w", err)
	}

	return nil
}

// List - последние записи, limit <= 0 - все
func (r *evictionJournalRepo) List(ctx context.Context, limit int) ([]models.EvictionRecord, error) {
	query := `SELECT room_id, reason, created_at, last_activity_at, evicted_at, peak_occupancy, sessions_notified
		FROM room_evictions
		ORDER BY evicted_at DESC`

	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	records := make([]models.EvictionRecord, 0)

	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("select room evictions: %w", err)
	}

	return records, nil
}

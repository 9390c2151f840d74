package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

//go:generate mockgen -destination=mocks/mock_eviction_journal.go -package=mocks . EvictionJournal

// EvictionJournal - журнал закрытых комнат
type EvictionJournal interface {
	Record(ctx context.Context, record models.EvictionRecord) error
	List(ctx context.Context, limit int) ([]models.EvictionRecord, error)
}

// EvictionUsecase закрывает комнаты: периодическая проверка, отложенные закрытия и явное удаление
type EvictionUsecase interface {
	Start(ctx context.Context)

	// Stop останавливает таймеры и закрывает все оставшиеся комнаты с причиной shutdown
	Stop(ctx context.Context)

	Sweep(ctx context.Context) SweepReport
	Stats() Stats

	// Schedule закрывает комнату через after, если она всё ещё пуста
	Schedule(roomID string, after time.Duration, reason models.EvictionReason)
	Cancel(roomID string)

	// Evict закрывает комнату безусловно. false - комнаты уже нет.
	Evict(ctx context.Context, roomID string, reason models.EvictionReason) bool

	Journal(ctx context.Context, limit int) ([]models.EvictionRecord, error)
}

type Stats struct {
	TotalRooms   int       `json:"totalRooms"`
	ActiveRooms  int       `json:"activeRooms"`
	WaitingRooms int       `json:"waitingRooms"`
	EndedRooms   int       `json:"endedRooms"`
	EmptyRooms   int       `json:"emptyRooms"`
	LastCleanup  time.Time `json:"lastCleanup,omitzero"`
}

type SweepReport struct {
	Before  Stats `json:"before"`
	After   Stats `json:"after"`
	Evicted int   `json:"evicted"`
}

type evictionUsecase struct {
	cfg   config.EvictionConfig
	clock clockwork.Clock
	locks *RoomLocks

	rooms    memory.RoomRepository
	sessions memory.SessionRepository
	journal  EvictionJournal

	mu          sync.Mutex
	timers      map[string]*pendingEviction
	lastCleanup time.Time
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

type pendingEviction struct {
	timer  clockwork.Timer
	reason models.EvictionReason
}

func NewEvictionUsecase(
	cfg config.EvictionConfig,
	clk clockwork.Clock,
	locks *RoomLocks,
	rooms memory.RoomRepository,
	sessions memory.SessionRepository,
	journal EvictionJournal,
) EvictionUsecase {
	return &evictionUsecase{
		cfg:      cfg,
		clock:    clk,
		locks:    locks,
		rooms:    rooms,
		sessions: sessions,
		journal:  journal,
		timers:   make(map[string]*pendingEviction),
	}
}

func (e *evictionUsecase) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil || e.stopped {
		return
	}

	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	ticker := e.clock.NewTicker(e.cfg.SweepInterval)

	go func() {
		defer close(e.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				report := e.Sweep(ctx)
				if report.Evicted > 0 {
					slog.Info(
						"rooms swept",
						slog.Int(constant.Count, report.Evicted),
						slog.Int("rooms_left", report.After.TotalRooms),
					)
				}
			}
		}
	}()

	slog.Info("eviction scheduler started", slog.Duration("interval", e.cfg.SweepInterval))
}

func (e *evictionUsecase) Stop(ctx context.Context) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true

	cancel, done := e.cancel, e.done

	for roomID, pending := range e.timers {
		pending.timer.Stop()
		delete(e.timers, roomID)
	}
	e.mu.Unlock()

	if cancel != nil {
		cancel()

		select {
		case <-done:
		case <-ctx.Done():
			slog.Warn("eviction loop did not stop in time", slog.Any(constant.Error, ctx.Err()))
		}
	}

	evicted := 0
	for _, room := range e.rooms.List() {
		if e.evictSafely(ctx, room.ID, models.ReasonShutdown, nil) {
			evicted++
		}
	}

	slog.Info("eviction scheduler stopped", slog.Int(constant.Count, evicted))
}

func (e *evictionUsecase) Sweep(ctx context.Context) SweepReport {
	report := SweepReport{Before: e.Stats()}

	now := e.clock.Now()

	for _, room := range e.rooms.List() {
		if _, due := e.policy(room, now); !due {
			continue
		}

		// условие перепроверяется под блокировкой: комнату могли занять после List
		stillDue := func(current models.Room) (models.EvictionReason, bool) {
			return e.policy(current, now)
		}

		if e.evictSafely(ctx, room.ID, "", stillDue) {
			report.Evicted++
		}
	}

	e.mu.Lock()
	e.lastCleanup = now
	e.mu.Unlock()

	report.After = e.Stats()

	return report
}

// policy проверяет правила по порядку: прерванное закрытие, возраст, бездействие, пустота
func (e *evictionUsecase) policy(room models.Room, now time.Time) (models.EvictionReason, bool) {
	switch {
	case room.Status == models.StatusEnded:
		// закрытие уже начиналось и сорвалось, доводим его с исходной причиной
		return room.EndReason, true
	case now.Sub(room.CreatedAt) >= e.cfg.MaxAge:
		return models.ReasonExpired, true
	case now.Sub(room.LastActivityAt) >= e.cfg.InactivityTimeout:
		return models.ReasonInactive, true
	case room.Occupancy() == 0 && !room.EmptySince.IsZero() && now.Sub(room.EmptySince) >= e.cfg.EmptyGrace:
		return models.ReasonEmpty, true
	default:
		return "", false
	}
}

func (e *evictionUsecase) Stats() Stats {
	e.mu.Lock()
	stats := Stats{LastCleanup: e.lastCleanup}
	e.mu.Unlock()

	for _, room := range e.rooms.List() {
		stats.TotalRooms++

		switch room.Status {
		case models.StatusActive:
			stats.ActiveRooms++
		case models.StatusWaiting:
			stats.WaitingRooms++
		case models.StatusEnded:
			stats.EndedRooms++
		}

		if room.Occupancy() == 0 {
			stats.EmptyRooms++
		}
	}

	return stats
}

func (e *evictionUsecase) Schedule(roomID string, after time.Duration, reason models.EvictionReason) {
	whenEmpty := func(room models.Room) (models.EvictionReason, bool) {
		return reason, room.Occupancy() == 0
	}

	if after <= 0 {
		e.Cancel(roomID)
		e.evictSafely(context.Background(), roomID, "", whenEmpty)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}

	if prev, ok := e.timers[roomID]; ok {
		prev.timer.Stop()
	}

	pending := &pendingEviction{reason: reason}
	pending.timer = e.clock.AfterFunc(after, func() {
		e.mu.Lock()
		if e.timers[roomID] == pending {
			delete(e.timers, roomID)
		}
		e.mu.Unlock()

		e.evictSafely(context.Background(), roomID, "", whenEmpty)
	})

	e.timers[roomID] = pending

	slog.Debug(
		"room eviction scheduled",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.Reason, string(reason)),
		slog.Duration("after", after),
	)
}

func (e *evictionUsecase) Cancel(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pending, ok := e.timers[roomID]; ok {
		pending.timer.Stop()
		delete(e.timers, roomID)
	}
}

func (e *evictionUsecase) Evict(ctx context.Context, roomID string, reason models.EvictionReason) bool {
	return e.evictSafely(ctx, roomID, reason, nil)
}

func (e *evictionUsecase) Journal(ctx context.Context, limit int) ([]models.EvictionRecord, error) {
	return e.journal.List(ctx, limit)
}

// evictCondition решает под блокировкой комнаты, закрывать ли её и с какой причиной
type evictCondition func(room models.Room) (models.EvictionReason, bool)

// evictSafely не даёт сбою одной комнаты остановить остальные
func (e *evictionUsecase) evictSafely(
	ctx context.Context,
	roomID string,
	reason models.EvictionReason,
	cond evictCondition,
) (evicted bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(
				"evict room panic",
				slog.String(constant.RoomID, roomID),
				slog.Any(constant.Error, r),
			)

			evicted = false
		}
	}()

	record, err := e.evict(roomID, reason, cond)
	if err != nil {
		slog.Error("evict room", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))
		return false
	}

	if record == nil {
		return false
	}

	metric.IncRoomsEvicted(string(record.Reason))

	slog.Info(
		"room evicted",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.Reason, string(record.Reason)),
		slog.Int(constant.Count, record.SessionsNotified),
	)

	// журнал пишется уже без блокировки комнаты
	if err = e.journal.Record(ctx, *record); err != nil {
		slog.Warn("record eviction", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))
	}

	return true
}

// evict: ended -> room-closed каждой сессии -> снятие сессий -> удаление комнаты.
// nil без ошибки - комнаты нет или условие уже не выполняется.
func (e *evictionUsecase) evict(
	roomID string,
	reason models.EvictionReason,
	cond evictCondition,
) (*models.EvictionRecord, error) {
	unlock := e.locks.Lock(roomID)
	defer unlock()

	room, err := e.rooms.Get(roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		dropOrphanSessions(e.sessions, roomID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	if cond != nil {
		var due bool
		if reason, due = cond(room); !due {
			return nil, nil
		}
	}

	if room, err = e.rooms.MarkEnded(roomID, reason); err != nil {
		return nil, fmt.Errorf("mark room ended: %w", err)
	}

	msg, err := events.New(events.TypeRoomClosed, events.RoomClosedEvent{
		RoomID:  roomID,
		Reason:  string(reason),
		Message: reason.Message(),
	})
	if err != nil {
		return nil, err
	}

	sessions := e.sessions.InRoom(roomID)
	for _, session := range sessions {
		deliver(session, msg)
	}

	e.sessions.UnregisterRoom(roomID)

	if err = e.rooms.Delete(roomID); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		return nil, fmt.Errorf("delete room: %w", err)
	}

	e.Cancel(roomID)

	record := models.NewEvictionRecord(&room, reason, len(sessions), e.clock.Now())

	return &record, nil
}

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/events"
	"github.com/dosewise/dosewise-api/internal/store"
)

// ScannerConfig holds configuration for the dispatch scanner.
type ScannerConfig struct {
	// Interval is the fixed polling cadence between scan passes.
	Interval time.Duration

	// WorkerCount determines how many due reminders one pass processes
	// concurrently. If zero or negative, defaults to 1.
	WorkerCount int

	// BatchSize caps how many due reminders a single pass loads.
	// Zero means no cap.
	BatchSize int
}

// DefaultScannerConfig returns a ScannerConfig with reasonable defaults.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Interval:    time.Minute,
		WorkerCount: 4,
		BatchSize:   500,
	}
}

// ScanResult aggregates one scan pass for observability. Processed counts
// every due reminder the pass handled; Sent and Failed count the reminders
// that reached those states during the pass. Reminders left pending for a
// later retry appear in Processed only.
type ScanResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// Scanner periodically scans storage for due reminders and drives each one
// through the channel senders and the retry state machine.
type Scanner struct {
	reminderStore store.ReminderStore
	senders       Senders
	policy        RetryPolicy
	config        ScannerConfig
	logger        *slog.Logger

	// emitter, when set, receives an event for every terminal reminder
	// transition. Nil means no events are published.
	emitter events.EventEmitter

	// locks serializes state transitions per reminder identity so a manual
	// trigger overlapping the periodic pass cannot double-send a reminder.
	locks keyedLocks

	// scanning guards against overlapping periodic passes when one pass
	// takes longer than the polling interval.
	scanning sync.Mutex
}

// NewScanner creates a new Scanner.
// Returns an error if a dependency is missing or a sender is unwired.
func NewScanner(
	reminderStore store.ReminderStore,
	senders Senders,
	policy RetryPolicy,
	config ScannerConfig,
	logger *slog.Logger,
) (*Scanner, error) {
	if reminderStore == nil {
		return nil, fmt.Errorf("reminder store cannot be nil")
	}
	if err := senders.Validate(); err != nil {
		return nil, fmt.Errorf("invalid senders: %w", err)
	}
	if policy.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry policy must allow at least one attempt")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}

	return &Scanner{
		reminderStore: reminderStore,
		senders:       senders,
		policy:        policy,
		config:        config,
		logger:        logger.With(slog.String("component", "dispatch_scanner")),
		locks:         keyedLocks{held: make(map[uuid.UUID]*lockEntry)},
	}, nil
}

// SetEventEmitter wires an emitter for reminder lifecycle events. Call it
// before Run; the scanner does not synchronize access to the emitter field.
func (s *Scanner) SetEventEmitter(emitter events.EventEmitter) {
	s.emitter = emitter
}

// Run polls on the configured fixed interval until ctx is cancelled.
// A pass still running when the next tick fires causes that tick to be
// skipped rather than stacking passes.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("dispatch scanner started",
		"interval", s.config.Interval,
		"worker_count", s.config.WorkerCount,
		"max_attempts", s.policy.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("dispatch scanner stopping")
			return
		case <-ticker.C:
			if !s.scanning.TryLock() {
				s.logger.Warn("previous scan pass still running, skipping tick")
				continue
			}
			result, err := s.ScanOnce(ctx, time.Now().UTC())
			s.scanning.Unlock()
			if err != nil {
				s.logger.Error("scan pass failed", "error", err)
				continue
			}
			if result.Processed > 0 {
				s.logger.Info("scan pass completed",
					"processed", result.Processed,
					"sent", result.Sent,
					"failed", result.Failed)
			}
		}
	}
}

// ScanOnce executes a single scan pass anchored at the given instant and
// returns the aggregated counts. It is the entry point shared by the
// periodic loop and the manual trigger. Only loading the due set can fail;
// per-reminder errors are absorbed into the retry state machine.
func (s *Scanner) ScanOnce(ctx context.Context, now time.Time) (ScanResult, error) {
	due, err := s.reminderStore.ListDue(ctx, now, s.config.BatchSize)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to load due reminders: %w", err)
	}
	if len(due) == 0 {
		return ScanResult{}, nil
	}

	var (
		mu     sync.Mutex
		result ScanResult
		wg     sync.WaitGroup
	)

	queue := make(chan *domain.ReminderRecord)

	for i := 0; i < s.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range queue {
				outcome := s.processReminder(ctx, rec, now)
				mu.Lock()
				result.Processed++
				switch outcome {
				case domain.ReminderStatusSent:
					result.Sent++
				case domain.ReminderStatusFailed:
					result.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, rec := range due {
		queue <- rec
	}
	close(queue)
	wg.Wait()

	return result, nil
}

// processReminder drives one reminder through a delivery attempt and returns
// the status it ended the pass with. All failure modes are contained here so
// one broken reminder cannot abort the pass.
func (s *Scanner) processReminder(
	ctx context.Context,
	rec *domain.ReminderRecord,
	now time.Time,
) domain.ReminderStatus {
	unlock := s.locks.lock(rec.ID)
	defer unlock()

	log := s.logger.With("reminder_id", rec.ID, "medication_id", rec.MedicationID)

	// Re-read under the lock: a concurrent pass may have transitioned the
	// record between our ListDue and now.
	fresh, err := s.reminderStore.GetByID(ctx, rec.ID)
	if err != nil {
		log.Error("failed to re-read reminder", "error", err)
		return rec.Status
	}
	rec = fresh
	if !rec.Due(now) {
		return rec.Status
	}

	// Retry only the channels still unsent; channels that succeeded on an
	// earlier attempt stay delivered.
	anyFailed := false
	for _, ch := range rec.Channels.PendingChannels() {
		sender, err := s.senders.For(ch)
		if err != nil {
			log.Error("unknown channel on reminder", "channel", ch, "error", err)
			anyFailed = true
			continue
		}

		if err := sender.Send(ctx, rec); err != nil {
			log.Warn("channel send failed",
				"channel", ch,
				"retry_count", rec.RetryCount,
				"error", err)
			anyFailed = true
			continue
		}

		if err := rec.Channels.MarkSent(ch, now); err != nil {
			log.Error("failed to mark channel sent", "channel", ch, "error", err)
			anyFailed = true
		}
	}

	if !anyFailed && rec.Channels.AllDelivered() {
		rec.Status = domain.ReminderStatusSent
	} else if s.policy.Exhausted(rec.RetryCount + 1) {
		rec.Status = domain.ReminderStatusFailed
		rec.RetryCount++
		t := now.UTC()
		rec.LastRetryAt = &t
		log.Warn("reminder exhausted retries", "retry_count", rec.RetryCount)
	} else {
		// Stay pending; the next pass on the fixed cadence retries the
		// channels still unsent.
		rec.RetryCount++
		t := now.UTC()
		rec.LastRetryAt = &t
	}
	rec.UpdatedAt = time.Now().UTC()

	if err := s.reminderStore.Update(ctx, rec); err != nil {
		log.Error("failed to persist reminder state", "error", err)
	}

	if rec.Status != domain.ReminderStatusPending {
		s.emitLifecycleEvent(ctx, rec, log)
	}

	return rec.Status
}

// emitLifecycleEvent publishes a terminal transition to the configured
// emitter. Event failures are logged and absorbed; delivery state has
// already been persisted.
func (s *Scanner) emitLifecycleEvent(
	ctx context.Context,
	rec *domain.ReminderRecord,
	log *slog.Logger,
) {
	if s.emitter == nil {
		return
	}

	eventType := events.TypeReminderSent
	if rec.Status == domain.ReminderStatusFailed {
		eventType = events.TypeReminderFailed
	}

	event, err := events.NewReminderEvent(eventType, events.ReminderPayload{
		ReminderID:   rec.ID,
		UserID:       rec.UserID,
		MedicationID: rec.MedicationID,
		ScheduledAt:  rec.ScheduledAt,
		RetryCount:   rec.RetryCount,
	})
	if err != nil {
		log.Error("failed to build lifecycle event", "error", err)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit lifecycle event", "event_type", eventType, "error", err)
	}
}

// keyedLocks hands out one mutex per reminder ID so transitions for the same
// record serialize while distinct records proceed in parallel. Entries are
// reference-counted and evicted on the last unlock, so the map stays bounded
// by the in-flight set rather than growing with every reminder ever scanned.
type keyedLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for the given ID, creating it on first use, and
// returns the corresponding unlock function.
func (k *keyedLocks) lock(id uuid.UUID) func() {
	k.mu.Lock()
	e, ok := k.held[id]
	if !ok {
		e = &lockEntry{}
		k.held[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.held, id)
		}
		k.mu.Unlock()
	}
}

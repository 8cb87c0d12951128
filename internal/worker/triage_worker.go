package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TriageWorker runs the triage workflow for newly created tickets. Jobs
// flow through a bounded queue drained by a fixed pool of goroutines.
// When the queue is full the job runs synchronously in the publishing
// goroutine instead, so back-pressure slows producers down rather than
// dropping triage runs.
type TriageWorker struct {
	triage *service.TriageService
	logger *zap.Logger

	queue   chan string
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	workers int

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewTriageWorker constructs the worker pool.
func NewTriageWorker(triage *service.TriageService, cfg config.WorkerConfig, logger *zap.Logger) *TriageWorker {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TriageWorker{
		triage:  triage,
		logger:  logger,
		queue:   make(chan string, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		workers: workers,
	}
}

// Start subscribes to ticket creation events and launches the pool.
func (w *TriageWorker) Start(dispatcher events.Dispatcher) {
	w.startOnce.Do(func() {
		dispatcher.Subscribe(events.EventTicketCreated, w.handleTicketCreated)
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.loop()
		}
		w.logger.Info("triage worker started",
			zap.Int("workers", w.workers),
			zap.Int("queue_size", cap(w.queue)),
		)
	})
}

// Stop drains the queue and waits for in-flight runs to finish.
func (w *TriageWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.queue)
		w.wg.Wait()
		w.cancel()
	})
}

func (w *TriageWorker) handleTicketCreated(ctx context.Context, event events.Event) error {
	select {
	case w.queue <- event.TicketID:
		return nil
	default:
		// Queue full. Run inline so the ticket still gets triaged;
		// the creating request absorbs the latency.
		w.logger.Warn("triage queue full, running inline", zap.String("ticket_id", event.TicketID))
		w.execute(ctx, event.TicketID)
		return nil
	}
}

func (w *TriageWorker) loop() {
	defer w.wg.Done()
	for ticketID := range w.queue {
		w.execute(w.ctx, ticketID)
	}
}

func (w *TriageWorker) execute(ctx context.Context, ticketID string) {
	if _, err := w.triage.ExecuteWorkflowForTicket(ctx, ticketID); err != nil {
		// Failures are already audited by the workflow; the ticket
		// stays in its current status for manual handling.
		w.logger.Error("triage run failed",
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}

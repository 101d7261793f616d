package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/forevermatch/api/internal/jobs"
	"github.com/forevermatch/api/internal/notifications"
	"github.com/forevermatch/api/internal/observability"
	"github.com/forevermatch/api/internal/queue/redisclient"
)

// TokenSweeper purges expired verification tokens; correctness of consume
// never depends on the sweep, it just keeps the table small.
type TokenSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type Config struct {
	WorkerID      string
	DequeueWait   time.Duration
	SweepInterval time.Duration
}

// Worker drains the verification-email queue, sending through the
// notifier with bounded re-enqueue retries, and runs the periodic sweep.
type Worker struct {
	cfg      Config
	queue    *redisclient.Client
	notifier notifications.Notifier
	sweeper  TokenSweeper
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, queue *redisclient.Client, notifier notifications.Notifier, sweeper TokenSweeper, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.DequeueWait <= 0 {
		cfg.DequeueWait = 2 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		sweeper:  sweeper,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	sweepTicker := time.NewTicker(w.cfg.SweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal", "worker_id", w.cfg.WorkerID)
			return nil

		case <-sweepTicker.C:
			w.runSweep(ctx)

		default:
			_, err := w.ProcessOne(ctx)

			if err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("dequeue failed", "err", err)
				// back off before hammering a broken redis
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// ProcessOne takes a single job off the queue. The bool reports whether a
// job was handled at all.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	j, err := w.queue.Dequeue(ctx, w.cfg.DequeueWait)

	if err != nil {
		if errors.Is(err, redisclient.ErrQueueEmpty) {
			w.observeDepth(ctx)
			return false, nil
		}

		return false, err
	}

	// honor the job's RunAt (re-enqueued retries carry a delay)
	if wait := time.Until(j.RunAt); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			// push it back so the job survives shutdown
			_ = w.queue.Enqueue(context.Background(), j)
			return false, ctx.Err()
		}
	}

	w.execute(ctx, j)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) {
	start := time.Now()

	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		// poison message, drop it loudly
		w.log.Error("undecodable email job dropped", "job_id", j.ID, "err", err)
		w.prom.EmailResults.WithLabelValues("failed").Inc()
		return
	}

	payload := decoded.(jobs.SendVerificationEmailPayload)

	err = w.notifier.SendVerificationEmail(ctx, notifications.SendVerificationEmailInput{
		Email:           payload.Email,
		VerificationURL: payload.VerificationURL,
	})

	secs := time.Since(start).Seconds()

	if err == nil {
		w.prom.EmailResults.WithLabelValues("sent").Inc()
		w.prom.EmailDuration.WithLabelValues("sent").Observe(secs)
		w.log.Info("verification email sent", "job_id", j.ID, "user_id", payload.UserID, "attempt", j.Attempts)
		return
	}

	w.handleFailure(ctx, j, err, secs)
}

func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, cause error, secs float64) {
	j.Attempts++

	if j.Attempts >= j.MaxTries {
		w.prom.EmailResults.WithLabelValues("failed").Inc()
		w.prom.EmailDuration.WithLabelValues("failed").Observe(secs)
		w.log.Error("verification email failed permanently",
			"job_id", j.ID, "attempts", j.Attempts, "err", cause)
		return
	}

	j.RunAt = time.Now().UTC().Add(RetryBackoff(j.Attempts - 1))

	err := w.queue.Enqueue(ctx, j)

	if err != nil {
		w.log.Error("re-enqueue failed, job lost", "job_id", j.ID, "err", err)
		w.prom.EmailResults.WithLabelValues("failed").Inc()
		return
	}

	w.prom.EmailResults.WithLabelValues("retry").Inc()
	w.prom.EmailDuration.WithLabelValues("retry").Observe(secs)
	w.log.Warn("verification email send failed, retrying",
		"job_id", j.ID, "attempt", j.Attempts, "run_at", j.RunAt, "err", cause)
}

func (w *Worker) runSweep(ctx context.Context) {
	if w.sweeper == nil {
		return
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var purged int64

	err := w.prom.ObserveDB("token_sweep", func() error {
		var sweepErr error
		purged, sweepErr = w.sweeper.Sweep(sweepCtx)
		return sweepErr
	})

	if err != nil {
		w.log.Error("token sweep failed", "err", err)
		return
	}

	if purged > 0 {
		w.log.Info("expired verification tokens purged", "count", purged)
	}
}

func (w *Worker) observeDepth(ctx context.Context) {
	depth, err := w.queue.Depth(ctx)

	if err == nil {
		w.prom.QueueDepth.Set(float64(depth))
	}
}

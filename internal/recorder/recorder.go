package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/config"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/dispatch"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
)

// DB is the slice of the connection pool the recorder writes through.
// *pgxpool.Pool satisfies it.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// tickRow is one archived trade tick.
type tickRow struct {
	Token       string
	AggregateID int64
	Price       string
	Quantity    string
	TradeTimeMs int64
	BuyerMaker  bool
	ReceivedAt  int64 // microseconds
}

// Metrics counts recorder activity.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// Recorder consumes feed updates from the dispatch buffer and writes ticks
// to the ticks table.
type Recorder struct {
	cfg    config.RecorderConfig
	logger *slog.Logger

	input *dispatch.Buffer[feed.Update]
	db    DB

	// Batching
	batch       []tickRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Highest archived aggregate ID per token. Updates carry overlapping
	// windows, so most ticks in an update were already queued.
	lastSeen map[string]int64

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

// New creates a recorder reading from input and writing through db.
func New(
	cfg config.RecorderConfig,
	input *dispatch.Buffer[feed.Update],
	db DB,
	logger *slog.Logger,
) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:      cfg,
		input:    input,
		db:       db,
		logger:   logger,
		batch:    make([]tickRow, 0, cfg.BatchSize),
		lastSeen: make(map[string]int64),
	}
}

// Start begins consuming updates and writing to the database.
func (r *Recorder) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.flushTicker = time.NewTicker(r.cfg.FlushInterval)

	r.wg.Add(1)
	go r.consumeLoop()

	r.wg.Add(1)
	go r.flushLoop()

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the recorder.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")

	if r.cancel != nil {
		r.cancel()
	}

	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("recorder stopped")
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
	}

	// Final flush on a fresh context; r.ctx is already cancelled.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.flush(flushCtx)

	return nil
}

// Stats returns current metrics.
func (r *Recorder) Stats() Metrics {
	r.batchMu.Lock()
	defer r.batchMu.Unlock()
	return r.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (r *Recorder) consumeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
			u, ok := r.input.TryPop()
			if !ok {
				// Buffer empty, wait a bit before trying again
				select {
				case <-r.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			r.handleUpdate(u)
		}
	}
}

// flushLoop periodically flushes the batch.
func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.flushTicker.C:
			r.flush(r.ctx)
		}
	}
}

// handleUpdate queues the ticks the archive has not seen yet.
func (r *Recorder) handleUpdate(u feed.Update) {
	rows := r.transform(u)
	if len(rows) == 0 {
		return
	}

	r.batchMu.Lock()
	r.batch = append(r.batch, rows...)
	shouldFlush := len(r.batch) >= r.cfg.BatchSize
	r.batchMu.Unlock()

	if shouldFlush {
		r.flush(r.ctx)
	}
}

// transform extracts the ticks above the token's archived high-water mark.
func (r *Recorder) transform(u feed.Update) []tickRow {
	if u.Err != "" || len(u.Ticks) == 0 {
		return nil
	}

	last := r.lastSeen[u.Token]
	receivedAt := time.Now().UnixMicro()

	var rows []tickRow
	maxID := last
	for _, t := range u.Ticks {
		if t.AggregateID <= last {
			continue
		}
		rows = append(rows, tickRow{
			Token:       u.Token,
			AggregateID: t.AggregateID,
			Price:       t.Price,
			Quantity:    t.Quantity,
			TradeTimeMs: t.TradeTimeMs,
			BuyerMaker:  t.BuyerMaker,
			ReceivedAt:  receivedAt,
		})
		if t.AggregateID > maxID {
			maxID = t.AggregateID
		}
	}
	r.lastSeen[u.Token] = maxID

	return rows
}

// flush writes the current batch to the database.
func (r *Recorder) flush(ctx context.Context) {
	r.batchMu.Lock()
	if len(r.batch) == 0 {
		r.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := r.batch
	r.batch = make([]tickRow, 0, r.cfg.BatchSize)
	r.batchMu.Unlock()

	start := time.Now()

	conflicts, err := r.batchInsert(ctx, batch)
	if err != nil {
		r.logger.Error("batch insert failed", "error", err, "count", len(batch))
		r.batchMu.Lock()
		r.metrics.Errors++
		r.batchMu.Unlock()
		return
	}

	r.batchMu.Lock()
	r.metrics.Inserts += int64(len(batch) - conflicts)
	r.metrics.Conflicts += int64(conflicts)
	r.metrics.Flushes++
	r.batchMu.Unlock()

	r.logger.Debug("flushed ticks",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (r *Recorder) batchInsert(ctx context.Context, rows []tickRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO ticks (token, aggregate_id, price, quantity, trade_time_ms, buyer_maker, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (token, aggregate_id) DO NOTHING
		`, row.Token, row.AggregateID, row.Price, row.Quantity, row.TradeTimeMs, row.BuyerMaker, row.ReceivedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// Package tracker consumes the shipment event stream. It keeps a running
// picture of fleet activity (counters per event kind, per status) without
// touching the primary database; losing it never loses a command.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/bargir/dispatch-gateway/internal/events"
	"github.com/bargir/dispatch-gateway/pkg/logger"
	"github.com/bargir/dispatch-gateway/pkg/prom"
	"github.com/bargir/dispatch-gateway/pkg/redis"
	"github.com/bargir/dispatch-gateway/pkg/worker"
)

const (
	reportInterval   = 30 * time.Second
	healthInterval   = 30 * time.Second
	lagWarnThreshold = 10_000
)

type Tracker struct {
	adapter redis.RedisAdapter
	stream  *events.Stream
	metrics *Metrics
	worker  *worker.WorkerManager
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(adapter redis.RedisAdapter, streamConfig events.StreamConfig, workers int) (*Tracker, error) {
	stream, err := events.NewStream(adapter, streamConfig)
	if err != nil {
		return nil, err
	}
	if err := stream.EnsureGroup(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		adapter: adapter,
		stream:  stream,
		metrics: NewMetrics(),
		worker:  worker.NewWorkerManager(10_000, workers, nil),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (t *Tracker) Start() error {
	t.worker.SetWorker(t.handle)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.worker.Start(); err != nil {
			logger.Error("[tracker] worker manager stopped", "error", err)
		}
	}()

	t.wg.Add(3)
	go t.consumeLoop()
	go t.reporter()
	go t.healthChecker()

	logger.Info("[tracker] started")
	return nil
}

// consumeLoop polls the consumer group and feeds the worker pool. Events
// are acked on read; a dropped event only skews the counters.
func (t *Tracker) consumeLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.stream.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
		}

		batch, err := t.stream.ReadBatch(t.ctx)
		if err != nil {
			logger.Warn("[tracker] read batch failed", "error", err)
			continue
		}
		for i := range batch {
			t.worker.Enqueue(&batch[i])
		}
	}
}

func (t *Tracker) handle(workerIndex int, job interface{}) {
	received, ok := job.(*events.ReceivedEvent)
	if !ok {
		logger.Error("[tracker] invalid job type", "worker", workerIndex)
		return
	}

	ev := received.Event
	t.metrics.Record(ev)
	prom.IncCounterVec(prom.SystemDispatch, prom.MetricEventsConsumed, string(ev.Kind))

	switch ev.Kind {
	case events.KindDriverAssigned:
		logger.Info("[tracker] driver assigned",
			"shipment", ev.ShipmentNumber,
			"driver_id", derefInt64(ev.DriverID),
			"at", ev.At,
		)
	case events.KindStatusChanged:
		logger.Info("[tracker] status changed",
			"shipment", ev.ShipmentNumber,
			"status", ev.Status,
			"at", ev.At,
		)
	default:
		logger.Warn("[tracker] unknown event kind", "kind", ev.Kind, "id", received.ID)
	}

	if err := t.stream.Ack(received.ID); err != nil {
		logger.Warn("[tracker] ack failed", "id", received.ID, "error", err)
	}
}

func (t *Tracker) reporter() {
	defer t.wg.Done()

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.report()
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *Tracker) report() {
	snap := t.metrics.Snapshot()
	logger.Info("[tracker] activity",
		"assignments", snap.Assignments,
		"status_changes", snap.StatusChanges,
		"by_status", snap.ByStatus,
		"uptime", snap.Uptime.String(),
	)
}

func (t *Tracker) healthChecker() {
	defer t.wg.Done()

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.checkHealth()
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *Tracker) checkHealth() {
	if err := t.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("[tracker] health check failed: redis unreachable", "error", err)
		return
	}
	if n, err := t.stream.Len(); err == nil && n > lagWarnThreshold {
		logger.Warn("[tracker] stream is long", "length", n)
	}
}

func (t *Tracker) Stop() {
	logger.Info("[tracker] shutting down")
	t.cancel()
	t.worker.Exit()
	t.wg.Wait()
	t.report()
	logger.Info("[tracker] stopped")
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

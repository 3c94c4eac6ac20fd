package recorder

import (
	"fmt"
	"sync"

	"github.com/samijaber1/alcometer/internal/logger"
	"github.com/samijaber1/alcometer/internal/metrics"
	"github.com/samijaber1/alcometer/internal/storage"
)

// Recorder writes history records in the background so request handlers never
// wait on storage.
type Recorder struct {
	store   storage.HistoryStorage
	log     *logger.Logger
	queue   chan *storage.Record
	workers int
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewRecorder creates a new recorder with a queue of queueSize records
func NewRecorder(store storage.HistoryStorage, log *logger.Logger, queueSize, workers int) *Recorder {
	if workers <= 0 {
		workers = 1
	}
	return &Recorder{
		store:   store,
		log:     log,
		queue:   make(chan *storage.Record, queueSize),
		workers: workers,
	}
}

// Start begins the background writers
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("recorder already running")
	}

	r.running = true
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.writeLoop()
	}

	r.log.Info("history recorder started", "workers", r.workers, "queue", cap(r.queue))
	return nil
}

// Stop stops accepting records and waits until the queue is drained
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info("history recorder stopped")
}

// Submit enqueues a record without blocking. It returns false when the record
// was dropped.
func (r *Recorder) Submit(record *storage.Record) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		r.log.Warn("history recorder not running, dropping record", "id", record.ID)
		metrics.IncHistoryDropped()
		return false
	}

	select {
	case r.queue <- record:
		return true
	default:
		r.log.Warn("history queue full, dropping record", "id", record.ID)
		metrics.IncHistoryDropped()
		return false
	}
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for record := range r.queue {
		if err := r.store.StoreEstimation(record); err != nil {
			r.log.Error("failed to store estimation", "id", record.ID, "error", err)
			metrics.IncHistoryWrite("error")
			continue
		}
		metrics.IncHistoryWrite("ok")
	}
}

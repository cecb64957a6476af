package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"blockverify/credential-verifier/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(recordID uuid.UUID)
}

type worker struct {
	verificationRepo repositories.VerificationRepository
	processor        ProcessorService
	jobQueue         chan uuid.UUID
	concurrency      int
	pollInterval     time.Duration
	wg               sync.WaitGroup
	stopChan         chan struct{}
}

func NewWorker(
	verificationRepo repositories.VerificationRepository,
	processor ProcessorService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	return &worker{
		verificationRepo: verificationRepo,
		processor:        processor,
		jobQueue:         make(chan uuid.UUID, 100),
		concurrency:      concurrency,
		pollInterval:     pollInterval,
		stopChan:         make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Pick up jobs left queued across restarts
	w.wg.Add(1)
	go w.pollQueuedJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(recordID uuid.UUID) {
	select {
	case w.jobQueue <- recordID:
		log.Printf("📥 Job %s enqueued\n", recordID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", recordID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case recordID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s\n", workerID, recordID)
			if err := w.processor.ProcessRecord(ctx, recordID); err != nil {
				log.Printf("❌ Worker #%d failed to process job %s: %v\n", workerID, recordID, err)
			}
		}
	}
}

func (w *worker) pollQueuedJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Queued jobs poller stopped")
			return
		case <-ticker.C:
			queued, err := w.verificationRepo.FindQueuedJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch queued jobs: %v\n", err)
				continue
			}

			if len(queued) > 0 {
				log.Printf("📋 Found %d queued jobs\n", len(queued))
			}

			for _, job := range queued {
				w.EnqueueJob(job.ID)
			}
		}
	}
}

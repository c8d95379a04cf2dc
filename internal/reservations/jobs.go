package reservations

import (
	"context"
	"log"
	"time"
)

// JobProcessor runs the reservation background jobs: expiring unpaid holds
// and periodically verifying reservation state against the payment ledger.
type JobProcessor struct {
	service Service
	config  *JobConfig
	done    chan struct{}
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	ExpirySweepInterval  time.Duration
	LedgerVerifyInterval time.Duration
	BatchSize            int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		ExpirySweepInterval:  5 * time.Minute,
		LedgerVerifyInterval: 24 * time.Hour,
		BatchSize:            100,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start starts all background jobs
func (jp *JobProcessor) Start(ctx context.Context) {
	log.Println("Starting reservation background jobs...")

	go jp.startExpirySweeper(ctx)
	go jp.startLedgerVerifier(ctx)

	log.Println("Reservation background jobs started")
}

// Stop stops all background jobs
func (jp *JobProcessor) Stop() {
	log.Println("Stopping reservation background jobs...")
	close(jp.done)
	log.Println("Reservation background jobs stopped")
}

// startExpirySweeper cancels unpaid reservations whose hold window lapsed
func (jp *JobProcessor) startExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ExpirySweepInterval)
	defer ticker.Stop()

	log.Printf("Started reservation expiry sweeper with %v interval", jp.config.ExpirySweepInterval)

	for {
		select {
		case <-ticker.C:
			jp.sweepExpired(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweepExpired(ctx context.Context) {
	cancelled, err := jp.service.CancelExpired(ctx, jp.config.BatchSize)
	if err != nil {
		log.Printf("Error sweeping expired reservations: %v", err)
		return
	}

	if cancelled > 0 {
		log.Printf("Cancelled %d expired reservations", cancelled)
	}
}

// startLedgerVerifier runs the daily ledger integrity check
func (jp *JobProcessor) startLedgerVerifier(ctx context.Context) {
	ticker := time.NewTicker(jp.config.LedgerVerifyInterval)
	defer ticker.Stop()

	log.Printf("Started ledger verifier with %v interval", jp.config.LedgerVerifyInterval)

	// Run immediately on startup so a crash between ledger write and
	// reconciliation is corrected as soon as the service comes back.
	jp.verifyLedger(ctx)

	for {
		select {
		case <-ticker.C:
			jp.verifyLedger(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) verifyLedger(ctx context.Context) {
	inconsistencies, err := jp.service.VerifyLedger(ctx)
	if err != nil {
		log.Printf("Error verifying reservation ledger: %v", err)
		return
	}

	if len(inconsistencies) > 0 {
		log.Printf("Corrected %d ledger inconsistencies", len(inconsistencies))
	}
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	return map[string]interface{}{
		"expiry_sweep_interval":  jp.config.ExpirySweepInterval.String(),
		"ledger_verify_interval": jp.config.LedgerVerifyInterval.String(),
		"batch_size":             jp.config.BatchSize,
		"status":                 "running",
	}
}

package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ScanController owns the dashboard state: the current result list, the
// loading flag and the informational message
type ScanController struct {
	client  AgentClient
	logger  *zap.Logger
	timeout time.Duration

	mu         sync.Mutex
	emails     []ScanResultItem
	loading    bool
	message    string
	generation uint64
	scannedAt  time.Time

	// seq identifies the most recent scan; older scans finishing late are discarded
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewScanController creates a new scan controller. A zero timeout leaves the
// request bounded only by the caller's context.
func NewScanController(client AgentClient, logger *zap.Logger, timeout time.Duration) *ScanController {
	return &ScanController{
		client:  client,
		logger:  logger,
		timeout: timeout,
		emails:  []ScanResultItem{},
	}
}

// ScanInbox runs one scan and updates the state with its outcome. Failures
// are absorbed into the state and never returned.
func (c *ScanController) ScanInbox(ctx context.Context) {
	<-c.ScanInboxAsync(ctx)
}

// ScanInboxAsync marks the controller as loading, issues the scan in the
// background and returns a channel closed once the state has been updated.
// A scan already in flight is cancelled and its result ignored.
func (c *ScanController) ScanInboxAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(done)
		return done
	}
	if c.cancel != nil {
		c.logger.Info("Superseding in-flight scan", zap.Uint64("scan", c.seq))
		c.cancel()
	}
	c.seq++
	seq := c.seq

	var scanCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		scanCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.loading = true
	c.message = ""
	c.mu.Unlock()

	c.logger.Debug("Scan started", zap.Uint64("scan", seq))

	go func() {
		defer close(done)
		defer cancel()

		start := time.Now()
		resp, err := c.client.RunScan(scanCtx)
		c.finish(seq, resp, err, time.Since(start))
	}()

	return done
}

func (c *ScanController) finish(seq uint64, resp *ScanResponse, err error, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("Discarding superseded scan result", zap.Uint64("scan", seq), zap.Uint64("current", c.seq))
		return
	}
	c.cancel = nil
	c.loading = false

	if err == nil && resp == nil {
		err = ErrMalformedResponse
	}
	if err != nil {
		// Prior results stay visible
		c.message = FallbackMessage
		c.logger.Warn("Scan failed",
			zap.Uint64("scan", seq),
			zap.Duration("took", took),
			zap.Error(err))
		return
	}

	c.generation++
	c.scannedAt = time.Now()
	if resp.Idle {
		c.emails = []ScanResultItem{}
		c.message = resp.Message
		c.logger.Info("Agent is idle",
			zap.Uint64("scan", seq),
			zap.String("message", resp.Message),
			zap.Duration("took", took))
		return
	}

	c.emails = resp.Items
	c.message = ""

	malformed := 0
	for _, item := range resp.Items {
		if item.Malformed() {
			malformed++
		}
	}
	c.logger.Info("Scan completed",
		zap.Uint64("scan", seq),
		zap.Int("results", len(resp.Items)),
		zap.Int("malformed", malformed),
		zap.Duration("took", took))
}

// Snapshot returns a copy of the current state
func (c *ScanController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	emails := make([]ScanResultItem, len(c.emails))
	copy(emails, c.emails)

	return Snapshot{
		Emails:     emails,
		Loading:    c.loading,
		Message:    c.message,
		Generation: c.generation,
		ScannedAt:  c.scannedAt,
	}
}

// Loading reports whether a scan is in flight
func (c *ScanController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Close aborts any in-flight scan and rejects new ones
func (c *ScanController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

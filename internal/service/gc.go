package service

import (
	"context"
	"sync"
	"time"

	"github.com/homedger-dev/homedger/shared/logger"
)

// BlobGarbageCollector removes blobs that no attachment record references.
// Orphans appear when an ingestion stores its bytes but fails before the
// record commits, or when best-effort cleanup after such a failure loses a
// race. It compares the blob listing with the repository's known keys.
type BlobGarbageCollector struct {
	repo            AttachmentRepository
	blobs           BlobStore
	safetyThreshold time.Duration

	mu               sync.Mutex // guards lastCleanupStats, written by the background goroutine
	lastCleanupStats CleanupStats
}

// CleanupStats tracks metrics from the last garbage collection run.
type CleanupStats struct {
	RunAt          time.Time
	BlobsScanned   int
	OrphanedBlobs  int
	BlobsDeleted   int
	BytesReclaimed int64
	DurationMs     int64
	Errors         []string
}

// NewBlobGarbageCollector creates a collector. safetyThreshold is the
// minimum age a blob must have before deletion, so blobs of in-flight
// ingestions that have not committed their record yet are never touched.
func NewBlobGarbageCollector(repo AttachmentRepository, blobs BlobStore, safetyThreshold time.Duration) *BlobGarbageCollector {
	return &BlobGarbageCollector{
		repo:            repo,
		blobs:           blobs,
		safetyThreshold: safetyThreshold,
	}
}

// StartBackgroundCleanup runs cleanup periodically until ctx is cancelled.
func (gc *BlobGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started blob garbage collector",
		"interval", interval, "safetyThreshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					logger.Log.Error("blob gc run failed", "error", err)
				} else {
					stats := gc.LastCleanupStats()
					logger.Log.Info("blob gc completed",
						"scanned", stats.BlobsScanned,
						"orphans", stats.OrphanedBlobs,
						"deleted", stats.BlobsDeleted,
						"bytesReclaimed", stats.BytesReclaimed,
						"durationMs", stats.DurationMs,
						"errors", len(stats.Errors),
					)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RunCleanup performs one collection pass.
func (gc *BlobGarbageCollector) RunCleanup(ctx context.Context) error {
	start := time.Now()
	stats := CleanupStats{RunAt: start}

	referenced, err := gc.repo.AllStorageKeys(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(referenced))
	for _, key := range referenced {
		known[key] = true
	}

	blobs, err := gc.blobs.List(ctx, blobPrefix)
	if err != nil {
		return err
	}
	stats.BlobsScanned = len(blobs)

	cutoff := start.Add(-gc.safetyThreshold)
	for _, blob := range blobs {
		if known[blob.Key] || blob.LastModified.After(cutoff) {
			continue
		}
		stats.OrphanedBlobs++

		if err := gc.blobs.Delete(ctx, blob.Key); err != nil {
			stats.Errors = append(stats.Errors, blob.Key+": "+err.Error())
			continue
		}
		stats.BlobsDeleted++
		stats.BytesReclaimed += blob.Size
	}

	stats.DurationMs = time.Since(start).Milliseconds()

	gc.mu.Lock()
	gc.lastCleanupStats = stats
	gc.mu.Unlock()
	return nil
}

// LastCleanupStats returns metrics from the most recent run. Safe to call
// while a background cleanup is running.
func (gc *BlobGarbageCollector) LastCleanupStats() CleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastCleanupStats
}

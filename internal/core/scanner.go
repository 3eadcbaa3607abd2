package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/filesystem"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/internal/tagging"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// ProgressCallback is called after every record appended to the inventory.
// It runs on the scan goroutine, never on the caller's.
type ProgressCallback func(count int, percent float64)

// DoneCallback receives the outcome of an asynchronous scan
type DoneCallback func(inv *models.Inventory, err error)

// Scanner builds inventories of directory trees. Only one scan runs at a time.
type Scanner struct {
	merger *tagging.Merger
	rules  *rules.RuleSet
	logger *zap.Logger

	scanning atomic.Bool

	mu        sync.Mutex
	inventory *models.Inventory
	cancel    context.CancelFunc
}

// NewScanner creates a scanner. The rule set is locked against edits for the
// duration of each scan; it may be nil.
func NewScanner(merger *tagging.Merger, rs *rules.RuleSet, logger *zap.Logger) *Scanner {
	if merger == nil {
		merger = tagging.NewMerger(nil, nil, config.RemoteGates{}, logger)
	}
	return &Scanner{
		merger: merger,
		rules:  rs,
		logger: logger,
	}
}

// Scanning reports whether a scan is in flight
func (s *Scanner) Scanning() bool {
	return s.scanning.Load()
}

// Inventory returns the inventory of the last completed scan, or nil
func (s *Scanner) Inventory() *models.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory
}

// Cancel stops the running scan, if any. A cancelled scan publishes nothing.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Scan runs a scan to completion on the calling goroutine
func (s *Scanner) Scan(ctx context.Context, sc config.ScanConfiguration, onProgress ProgressCallback) (*models.Inventory, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	root, err := validateRoot(sc.Root)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, root, sc, onProgress)
}

// Start validates the root and launches the scan in the background. The
// configuration errors and ErrScanInProgress are returned before any work
// starts; everything later is delivered to onDone.
func (s *Scanner) Start(ctx context.Context, sc config.ScanConfiguration, onProgress ProgressCallback, onDone DoneCallback) error {
	if !s.scanning.CompareAndSwap(false, true) {
		return ErrScanInProgress
	}

	root, err := validateRoot(sc.Root)
	if err != nil {
		s.scanning.Store(false)
		return err
	}

	go func() {
		inv, err := s.run(ctx, root, sc, onProgress)
		s.scanning.Store(false)
		if onDone != nil {
			onDone(inv, err)
		}
	}()
	return nil
}

// validateRoot resolves root to an absolute directory path
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", ErrNoRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", classifyPathError(abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	// Reading the root is the first thing pass 1 does; fail early if it cannot
	f, err := os.Open(abs)
	if err != nil {
		return "", classifyPathError(abs, err)
	}
	f.Close()

	return abs, nil
}

// job is one candidate file in traversal order
type job struct {
	index int
	path  string
}

// result is the outcome of processing one job
type result struct {
	index  int
	path   string
	record *models.FileRecord
	err    error
}

func (s *Scanner) run(parent context.Context, root string, sc config.ScanConfiguration, onProgress ProgressCallback) (*models.Inventory, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	if s.rules != nil {
		release := s.rules.Freeze()
		defer release()
	}

	mode := sc.Mode
	if mode == "" {
		mode = config.ModeLocal
	}

	inv := models.NewInventory(uuid.New().String(), root)
	inv.Mode = string(mode)
	inv.Classified = s.merger.Classifies(mode)

	s.logger.Info("Starting scan",
		zap.String("scan_id", inv.ScanID),
		zap.String("path", root),
		zap.String("mode", inv.Mode),
		zap.Bool("include_hidden", sc.IncludeHidden),
		zap.Strings("extensions", sc.Extensions))

	// Pass 1: count candidates with the same filters pass 2 applies
	counter := filesystem.NewWalker(sc, s.logger)
	total, err := counter.Count(ctx, root)
	if err != nil {
		s.logger.Info("Scan cancelled", zap.String("scan_id", inv.ScanID), zap.Error(err))
		return nil, err
	}
	inv.TotalEntries = total

	s.logger.Debug("Counted candidates", zap.Int("total", total))
	if total == 0 && onProgress != nil {
		onProgress(0, 100)
	}

	// Pass 2: collect
	if err := s.collect(ctx, root, sc, mode, total, inv, onProgress); err != nil {
		s.logger.Info("Scan cancelled", zap.String("scan_id", inv.ScanID), zap.Error(err))
		return nil, err
	}

	inv.EndTime = time.Now()
	inv.Duration = inv.EndTime.Sub(inv.StartTime)

	s.mu.Lock()
	s.inventory = inv
	s.mu.Unlock()

	s.logger.Info("Scan completed",
		zap.String("scan_id", inv.ScanID),
		zap.Duration("duration", inv.Duration),
		zap.Int("files", inv.Len()),
		zap.Int("skipped", inv.SkippedCount()))

	if inv.Len() == 0 && inv.SkippedCount() > 0 {
		return inv, ErrAllEntriesFailed
	}
	return inv, nil
}

// collect walks the tree again and processes files on a worker pool. Results
// are appended in traversal order regardless of completion order.
func (s *Scanner) collect(ctx context.Context, root string, sc config.ScanConfiguration, mode config.Mode, total int, inv *models.Inventory, onProgress ProgressCallback) error {
	workers := sc.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	limit := sc.EffectiveTagCap()

	jobs := make(chan job, workers*2)
	results := make(chan result, workers*2)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, root, mode, limit, jobs, results)
	}

	// Unreadable directories are recorded from the walking goroutine only
	var dirSkipped []models.SkippedEntry
	walker := filesystem.NewWalker(sc, s.logger)
	walker.OnError = func(path string, err error) {
		dirSkipped = append(dirSkipped, models.SkippedEntry{Path: path, Reason: classifyPathError(path, err).Error()})
	}

	// Start results collector
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		s.collectResults(results, total, inv, onProgress)
	}()

	index := 0
	walkErr := walker.Walk(ctx, root, func(path string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case jobs <- job{index: index, path: path}:
			index++
			return nil
		}
	})

	// Close channels and wait
	close(jobs)
	wg.Wait()
	close(results)
	collectWg.Wait()

	if walkErr != nil {
		return walkErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	inv.Skipped = append(inv.Skipped, dirSkipped...)
	return nil
}

// worker stats and tags files from the job channel
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, root string, mode config.Mode, limit int, jobs <-chan job, results chan<- result) {
	defer wg.Done()

	for j := range jobs {
		if ctx.Err() != nil {
			// Drain so the walker never blocks; results are discarded
			results <- result{index: j.index, path: j.path, err: ctx.Err()}
			continue
		}
		results <- s.processFile(ctx, root, mode, limit, j)
	}
}

func (s *Scanner) processFile(ctx context.Context, root string, mode config.Mode, limit int, j job) result {
	info, err := filesystem.Stat(j.path)
	if err != nil {
		s.logger.Debug("Skipping unreadable entry", zap.String("path", j.path), zap.Error(err))
		return result{index: j.index, path: j.path, err: classifyPathError(j.path, err)}
	}

	record := filesystem.NewRecord(info, root)
	record.Tags = s.merger.Merge(ctx, record, mode, limit)
	return result{index: j.index, path: j.path, record: record}
}

// collectResults reorders results by traversal index and appends them
func (s *Scanner) collectResults(results <-chan result, total int, inv *models.Inventory, onProgress ProgressCallback) {
	pending := make(map[int]result)
	next := 0

	for r := range results {
		pending[r.index] = r
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if ready.err != nil {
				inv.Skipped = append(inv.Skipped, models.SkippedEntry{Path: ready.path, Reason: ready.err.Error()})
				continue
			}

			inv.Append(ready.record)
			if onProgress != nil {
				onProgress(inv.Len(), percent(inv.Len(), total))
			}
		}
	}
}

// percent returns count/total as a percentage, capped at 100. The tree may
// grow between the two passes.
func percent(count, total int) float64 {
	if total <= 0 {
		return 100
	}
	p := float64(count) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

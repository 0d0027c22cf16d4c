package tasks

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/shared"
)

// BulkExportOpts contains configuration for full-household exports.
type BulkExportOpts struct {
	Format     string                                                 // Export format: json, csv, markdown, txt
	OutputDir  string                                                 // Base output directory (default: hearth_export_{epoch})
	NumWorkers int                                                    // Concurrent attachment downloads (default: 5)
	RateLimit  float64                                                // Attachment requests per second (default: 5)
	FetchBlob  func(ctx context.Context, hash string) ([]byte, error) // Blob fetcher, nil skips attachments
}

// AttachmentResult records one attempted attachment download.
type AttachmentResult struct {
	Hash  string `json:"hash"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// BulkExportResult summarizes a full export run.
type BulkExportResult struct {
	OutputDirectory string             `json:"output_directory"`
	Files           []string           `json:"files"`
	Attachments     []AttachmentResult `json:"attachments,omitempty"`
	SuccessCount    int                `json:"success_count"`
	FailedCount     int                `json:"failed_count"`
}

type attachmentJob struct {
	hash string
}

// BulkExport writes every collection to the output directory and optionally
// downloads referenced file attachments concurrently with rate limiting.
//
// Attachment downloads use a worker pool so a slow file server cannot stall
// the whole export, and partial failures are reported in the manifest rather
// than aborting the run.
func (e *HomeEngine) BulkExport(ctx context.Context, progress chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("hearth_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	snapshot, err := e.Snapshot(time.Now())
	if err != nil {
		return nil, err
	}

	result := &BulkExportResult{OutputDirectory: opts.OutputDir}

	monthly, err := e.registry.Subscriptions.MonthlyTotal()
	if err != nil {
		return nil, err
	}

	reports := []*formatter.Report{
		formatter.ApplianceReport(snapshot.Appliances),
		formatter.VehicleReport(snapshot.Vehicles),
		formatter.ScheduleReport(snapshot.Schedules),
		formatter.DueReport(snapshot.Due),
		formatter.CompanyReport(snapshot.Companies),
		formatter.SubscriptionReport(snapshot.Subscriptions, monthly),
		formatter.PropertyReport(snapshot.Properties),
		formatter.ProjectReport(snapshot.Projects),
		formatter.MaterialReport(snapshot.Materials),
	}

	for i, report := range reports {
		e.sendProgress(progress, update(Export, i+1, len(reports), "writing %s", report.Title))
		written, err := formatter.WriteReport(report, opts.Format, opts.OutputDir)
		if err != nil {
			result.FailedCount++
			e.logger.Warn("report write failed", "report", report.Title, "error", err)
			continue
		}
		result.Files = append(result.Files, written)
		result.SuccessCount++
	}

	// A raw snapshot rides along regardless of format so a JSON copy of the
	// data always exists next to the rendered reports.
	raw, err := formatter.ToJSON(snapshot, true)
	if err != nil {
		return nil, err
	}
	snapshotPath := filepath.Join(opts.OutputDir, "snapshot.json")
	if err := os.WriteFile(snapshotPath, raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	result.Files = append(result.Files, snapshotPath)

	if opts.FetchBlob != nil {
		result.Attachments = e.exportAttachments(ctx, progress, snapshot, opts)
		for _, a := range result.Attachments {
			if a.Error == "" {
				result.SuccessCount++
			} else {
				result.FailedCount++
			}
		}
	}

	if err := e.writeManifest(opts.OutputDir, opts.Format, result); err != nil {
		return nil, err
	}

	e.logger.Info("export complete", "dir", opts.OutputDir, "files", len(result.Files), "failed", result.FailedCount)
	return result, nil
}

// exportAttachments downloads every referenced blob through a worker pool.
func (e *HomeEngine) exportAttachments(ctx context.Context, progress chan<- ProgressUpdate, snapshot *Snapshot, opts BulkExportOpts) []AttachmentResult {
	hashes := attachmentHashes(snapshot)
	if len(hashes) == 0 {
		return nil
	}

	dir := filepath.Join(opts.OutputDir, "attachments")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return []AttachmentResult{{Error: fmt.Sprintf("failed to create attachments dir: %v", err)}}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan attachmentJob, len(hashes))
	results := make(chan AttachmentResult, len(hashes))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results <- AttachmentResult{Hash: job.hash, Error: err.Error()}
					continue
				}
				data, err := opts.FetchBlob(ctx, job.hash)
				if err != nil {
					results <- AttachmentResult{Hash: job.hash, Error: err.Error()}
					continue
				}
				target := filepath.Join(dir, job.hash)
				if err := os.WriteFile(target, data, 0644); err != nil {
					results <- AttachmentResult{Hash: job.hash, Error: err.Error()}
					continue
				}
				results <- AttachmentResult{Hash: job.hash, Path: target}
			}
		}()
	}

	go func() {
		for i, hash := range hashes {
			e.sendProgress(progress, update(Attachments, i+1, len(hashes), "downloading %s", hash[:8]))
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case jobs <- attachmentJob{hash: hash}:
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []AttachmentResult
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// attachmentHashes collects the deduplicated blob hashes referenced by
// manual and receipt URLs across the snapshot.
func attachmentHashes(s *Snapshot) []string {
	seen := map[string]bool{}
	var hashes []string

	add := func(rawURL string) {
		hash, ok := blobHash(rawURL)
		if !ok || seen[hash] {
			return
		}
		seen[hash] = true
		hashes = append(hashes, hash)
	}

	for _, a := range s.Appliances {
		add(a.ManualURL)
		add(a.ReceiptURL)
	}
	for _, c := range s.Completions {
		add(c.ReceiptURL)
	}
	for _, m := range s.Materials {
		add(m.ReceiptURL)
	}

	return hashes
}

// blobHash extracts the sha256 from a Blossom blob URL. Blob URLs end in the
// 64-hex hash, optionally with a file extension.
func blobHash(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	base := path.Base(u.Path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if len(base) != 64 {
		return "", false
	}
	if _, err := hex.DecodeString(base); err != nil {
		return "", false
	}
	return base, true
}

// writeManifest summarizes the export next to the exported files.
func (e *HomeEngine) writeManifest(dir, format string, result *BulkExportResult) error {
	manifest := map[string]any{
		"exported_at": time.Now().Format(time.RFC3339),
		"format":      format,
		"files":       result.Files,
		"attachments": result.Attachments,
		"success":     result.SuccessCount,
		"failed":      result.FailedCount,
	}
	data, err := formatter.ToJSON(manifest, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

package swoophttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/swoopdl/swoop/internal/segment"
	"github.com/swoopdl/swoop/internal/utils"
)

// getFileSize issues the metadata probe and reads the resource size.
func getFileSize(url string, client utils.HTTPDoer) (int64, error) {
	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating HEAD request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing HEAD request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, classifyStatus(resp.StatusCode)
	}
	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return 0, errors.New("server didn't provide Content-Length header")
	}
	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing Content-Length: %v", err)
	}
	if size <= 0 {
		return 0, errors.New("invalid file size reported by server")
	}
	return size, nil
}

// PerformMultiDownload downloads url into outputPath with ranged segment
// requests and returns the total bytes written. Size discovery happens once;
// planning and execution are retried as a whole, rebuilding segments and
// batches each attempt. Rewritten offsets are identical across attempts, so
// retrying a partially complete attempt is harmless.
func PerformMultiDownload(cfg utils.DownloadConfig, client utils.HTTPDoer, url, outputPath string, progressCh chan<- int64) (int64, error) {
	fileSize, err := getFileSize(url, client)
	if err != nil {
		return 0, fmt.Errorf("error getting file size: %w", err)
	}
	log.Debug().Str("op", "http/multi-down").Msgf("Resource size is %d bytes", fileSize)

	planner := segment.NewPlanner(cfg)
	writer := &segment.FileWriter{Path: outputPath}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for retry := 0; retry < maxRetries; retry++ {
		if retry > 0 {
			log.Warn().Str("op", "http/multi-down").Msgf("Retrying download for %s (attempt %d/%d)", outputPath, retry+1, maxRetries)
			time.Sleep(time.Duration(retry+1) * 500 * time.Millisecond) // Backoff
		}
		written, err := downloadAttempt(planner, writer, client, url, fileSize, progressCh)
		if err != nil {
			lastErr = err
			log.Error().Str("op", "http/multi-down").Err(err).Msgf("Download attempt %d failed", retry+1)
			continue
		}
		log.Info().Str("op", "http/multi-down").Msgf("Downloaded %d bytes to %s", written, outputPath)
		return written, nil
	}
	return 0, fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}

// downloadAttempt plans segments for the discovered size and runs all
// batches to completion. Batches run concurrently; segments inside a batch
// run strictly in order. Every batch is awaited before any failure is
// surfaced.
func downloadAttempt(planner *segment.Planner, writer *segment.FileWriter, client utils.HTTPDoer, url string, fileSize int64, progressCh chan<- int64) (int64, error) {
	plan := planner.PlanSegments(fileSize)
	segments := planner.CreateSegments(plan, writer)
	batches := planner.PartitionIntoBatches(segments)
	log.Debug().Str("op", "http/multi-down").Msgf("Planned %d segments of %d bytes across %d batches", plan.SegmentCount, plan.SegmentSize, len(batches))

	totals := make([]int64, len(batches))
	errs := make([]error, len(batches))
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []*segment.Segment) {
			defer wg.Done()
			totals[i], errs[i] = downloadBatch(batch, client, url, progressCh)
		}(i, batch)
	}
	wg.Wait()

	var total int64
	var firstErr error
	for i := range batches {
		total += totals[i]
		if errs[i] != nil && firstErr == nil {
			firstErr = errs[i]
		}
	}
	if firstErr == nil && total != fileSize {
		firstErr = fmt.Errorf("size mismatch: expected %d bytes, wrote %d", fileSize, total)
	}
	if firstErr != nil {
		// Roll back the failed attempt's progress so the next attempt
		// starts counting from zero.
		if progressCh != nil && total > 0 {
			progressCh <- -total
		}
		return 0, firstErr
	}
	return total, nil
}

// downloadBatch fetches its segments in order; a segment's write completes
// before the next request goes out.
func downloadBatch(batch []*segment.Segment, client utils.HTTPDoer, url string, progressCh chan<- int64) (int64, error) {
	var total int64
	for _, seg := range batch {
		n, err := downloadSegment(seg, client, url)
		if err != nil {
			return total, err
		}
		total += n
		if progressCh != nil {
			progressCh <- n
		}
	}
	return total, nil
}

func downloadSegment(seg *segment.Segment, client utils.HTTPDoer, url string) (int64, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating GET request: %v", err)
	}
	req.Header.Set("Range", seg.RangeHeader())
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing GET request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		// The server ignored the Range header and sent the whole resource.
		return 0, ErrRangeRequestsNotSupported
	}
	if resp.StatusCode != http.StatusPartialContent {
		return 0, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("error reading response body: %v", err)
	}
	return seg.Write(body)
}

package s3

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/swoopdl/swoop/internal/segment"
	"github.com/swoopdl/swoop/internal/utils"
)

// PerformS3Download downloads one object into outputPath with ranged
// GetObject calls, reusing the segment planner. The retry semantics match
// the HTTP path: size discovery once, whole plan retried on failure.
func PerformS3Download(ctx context.Context, cfg utils.DownloadConfig, api ObjectAPI, bucket, key, outputPath string, progressCh chan<- int64) (int64, error) {
	size, err := getObjectSize(ctx, api, bucket, key)
	if err != nil {
		return 0, err
	}
	log.Debug().Str("op", "s3/download").Msgf("Object s3://%s/%s is %d bytes", bucket, key, size)

	planner := segment.NewPlanner(cfg)
	writer := &segment.FileWriter{Path: outputPath}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for retry := 0; retry < maxRetries; retry++ {
		if retry > 0 {
			log.Warn().Str("op", "s3/download").Msgf("Retrying download for %s (attempt %d/%d)", outputPath, retry+1, maxRetries)
			time.Sleep(time.Duration(retry+1) * 500 * time.Millisecond) // Backoff
		}
		written, err := downloadAttempt(ctx, planner, writer, api, bucket, key, size, progressCh)
		if err != nil {
			lastErr = err
			log.Error().Str("op", "s3/download").Err(err).Msgf("Download attempt %d failed", retry+1)
			continue
		}
		log.Info().Str("op", "s3/download").Msgf("Downloaded %d bytes to %s", written, outputPath)
		return written, nil
	}
	return 0, fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}

func downloadAttempt(ctx context.Context, planner *segment.Planner, writer *segment.FileWriter, api ObjectAPI, bucket, key string, size int64, progressCh chan<- int64) (int64, error) {
	plan := planner.PlanSegments(size)
	segments := planner.CreateSegments(plan, writer)
	batches := planner.PartitionIntoBatches(segments)

	totals := make([]int64, len(batches))
	errs := make([]error, len(batches))
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []*segment.Segment) {
			defer wg.Done()
			totals[i], errs[i] = downloadBatch(ctx, batch, api, bucket, key, progressCh)
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
	if firstErr == nil && total != size {
		firstErr = fmt.Errorf("size mismatch: expected %d bytes, wrote %d", size, total)
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

func downloadBatch(ctx context.Context, batch []*segment.Segment, api ObjectAPI, bucket, key string, progressCh chan<- int64) (int64, error) {
	var total int64
	for _, seg := range batch {
		n, err := downloadSegment(ctx, seg, api, bucket, key)
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

func downloadSegment(ctx context.Context, seg *segment.Segment, api ObjectAPI, bucket, key string) (int64, error) {
	obj, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(seg.RangeHeader()),
	})
	if err != nil {
		return 0, fmt.Errorf("error fetching range %s: %v", seg.RangeHeader(), err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return 0, fmt.Errorf("error reading object body: %v", err)
	}
	return seg.Write(body)
}

// progressWriter forwards byte counts to the progress channel as the
// transfer manager writes them.
type progressWriter struct {
	writer     io.WriterAt
	progressCh chan<- int64
}

func (pw *progressWriter) WriteAt(p []byte, off int64) (int, error) {
	n, err := pw.writer.WriteAt(p, off)
	if n > 0 && pw.progressCh != nil {
		pw.progressCh <- int64(n)
	}
	return n, err
}

// PerformManagedDownload hands small objects to the SDK transfer manager
// instead of the segment engine.
func PerformManagedDownload(ctx context.Context, api ObjectAPI, bucket, key, outputPath string, progressCh chan<- int64) (int64, error) {
	downloader := manager.NewDownloader(api, func(d *manager.Downloader) {
		d.PartSize = 2 * utils.DefaultBufferSize
		d.Concurrency = 4
	})
	target := &progressWriter{
		writer:     &segment.FileWriter{Path: outputPath},
		progressCh: progressCh,
	}
	written, err := downloader.Download(ctx, target, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error downloading S3 object: %v", err)
	}
	return written, nil
}

package s3

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/swoopdl/swoop/internal/utils"
)

type S3Downloader struct{}

func (d *S3Downloader) ValidateJob(job *utils.SwoopJob) error {
	bucket, key, err := parseS3URL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	log.Info().Str("op", "s3/initial").Msgf("job validated for s3://%s/%s", bucket, key)
	return nil
}

func (d *S3Downloader) BuildJob(job *utils.SwoopJob) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	profile, _ := job.Metadata["profile"].(string)

	client, err := getS3Client(profile)
	if err != nil {
		return fmt.Errorf("error creating S3 client: %v", err)
	}
	size, err := getObjectSize(context.Background(), client, bucket, key)
	if err != nil {
		return err
	}
	job.Metadata["size"] = size
	job.Metadata["client"] = client

	if job.OutputPath == "" {
		parts := strings.Split(key, "/")
		job.OutputPath = parts[len(parts)-1]
	}
	if _, err := os.Stat(job.OutputPath); err == nil {
		job.OutputPath = utils.RenewOutputPath(job.OutputPath)
	}
	log.Info().Str("op", "s3/initial").Msgf("job built for s3://%s/%s", bucket, key)
	return nil
}

func (d *S3Downloader) Download(job *utils.SwoopJob) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	size := job.Metadata["size"].(int64)
	api := job.Metadata["client"].(ObjectAPI)

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	startTime := time.Now()

	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, size)
			}
		}
	}()

	var written int64
	var err error
	if size < 2*utils.DefaultBufferSize {
		// Segmenting tiny objects buys nothing; let the transfer manager
		// handle them in one shot.
		written, err = PerformManagedDownload(context.Background(), api, bucket, key, job.OutputPath, progressCh)
	} else {
		written, err = PerformS3Download(context.Background(), job.Config, api, bucket, key, job.OutputPath, progressCh)
	}
	close(progressCh)
	<-progressDone

	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s to %s: %w", bucket, key, job.OutputPath, err)
	}
	job.Metadata["totalDownloaded"] = written
	job.Metadata["totalTime"] = time.Since(startTime).Seconds()
	return nil
}

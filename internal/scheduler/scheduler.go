package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/swoopdl/swoop/internal/downloaders/http"
	"github.com/swoopdl/swoop/internal/downloaders/s3"
	"github.com/swoopdl/swoop/internal/output"
	"github.com/swoopdl/swoop/internal/utils"
)

// downloaderRegistry maps job types to their downloader implementations.
var downloaderRegistry = map[string]utils.Downloader{
	"http": &swoophttp.HTTPDownloader{},
	"s3":   &s3.S3Downloader{},
}

// Run executes the given jobs across numWorkers workers and reports their
// progress on the terminal. It returns an error if any job failed.
func Run(jobs []utils.SwoopJob, numWorkers int) error {
	outputMgr := output.NewManager()
	outputMgr.StartDisplay()
	defer outputMgr.StopDisplay()

	jobCh := make(chan utils.SwoopJob, len(jobs))
	for _, job := range jobs {
		job.ID = uuid.New().String()
		jobCh <- job
	}
	close(jobCh)

	if numWorkers <= 0 {
		numWorkers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			processJobs(jobCh, outputMgr)
		}()
	}
	wg.Wait()

	if outputMgr.HasErrors() {
		return errors.New("one or more jobs failed")
	}
	return nil
}

func processJobs(jobCh <-chan utils.SwoopJob, outputMgr *output.Manager) {
	for job := range jobCh {
		name := job.OutputPath
		if name == "" {
			name = job.URL
		}
		outID := outputMgr.RegisterJob(name)

		downloader, exists := downloaderRegistry[job.JobType]
		if !exists {
			outputMgr.ReportError(outID, fmt.Errorf("unknown job type: %s", job.JobType))
			continue
		}

		outputMgr.SetStatus(outID, "pending")
		outputMgr.SetMessage(outID, fmt.Sprintf("Validating %s job", job.JobType))
		if err := downloader.ValidateJob(&job); err != nil {
			outputMgr.ReportError(outID, fmt.Errorf("validation failed: %w", err))
			continue
		}

		outputMgr.SetMessage(outID, fmt.Sprintf("Building %s job", job.JobType))
		if err := downloader.BuildJob(&job); err != nil {
			outputMgr.ReportError(outID, fmt.Errorf("build failed: %w", err))
			continue
		}

		outputMgr.SetStatus(outID, "active")
		outputMgr.SetMessage(outID, "Downloading")
		job.ProgressFunc = func(downloaded, total int64) {
			outputMgr.SetProgress(outID, downloaded, total)
		}
		if err := downloader.Download(&job); err != nil {
			outputMgr.ReportError(outID, err)
			continue
		}

		outputMgr.Complete(outID, fmt.Sprintf("Completed %s", job.OutputPath))
	}
}

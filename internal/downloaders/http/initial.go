package swoophttp

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/swoopdl/swoop/internal/utils"
)

type HTTPDownloader struct{}

func (d *HTTPDownloader) ValidateJob(job *utils.SwoopJob) error {
	parsedURL, err := url.Parse(job.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
	return nil
}

func (d *HTTPDownloader) BuildJob(job *utils.SwoopJob) error {
	job.HTTPClientConfig.HighThreadMode = job.Config.MaxConcurrentDownloads > 8
	client := utils.NewSwoopHTTPClient(job.HTTPClientConfig)

	fileName, err := getFileName(job.URL, client)
	if err != nil {
		return fmt.Errorf("error probing URL: %v", err)
	}
	if size, err := getFileSize(job.URL, client); err == nil {
		job.Metadata["fileSize"] = size
	}

	if job.OutputPath == "" && fileName != "" {
		job.OutputPath = fileName
	} else if job.OutputPath == "" {
		parsedURL, _ := url.Parse(job.URL)
		pathParts := strings.Split(parsedURL.Path, "/")
		job.OutputPath = pathParts[len(pathParts)-1]
		if job.OutputPath == "" {
			job.OutputPath = "download"
		}
	}
	if _, err := os.Stat(job.OutputPath); err == nil {
		job.OutputPath = utils.RenewOutputPath(job.OutputPath)
	}
	return nil
}

func (d *HTTPDownloader) Download(job *utils.SwoopJob) error {
	client := utils.NewSwoopHTTPClient(job.HTTPClientConfig)
	client.SetHeader("Connection", "keep-alive")

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	startTime := time.Now()

	fileSize, _ := job.Metadata["fileSize"].(int64)
	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, fileSize)
			}
		}
	}()

	written, err := Fetch(job.URL, job.OutputPath, job.Config, client, progressCh)
	close(progressCh)
	<-progressDone

	job.Metadata["totalDownloaded"] = written
	job.Metadata["totalTime"] = time.Since(startTime).Seconds()
	return err
}

// Fetch downloads url into outputPath and returns the bytes written. It is
// the single entry point for one URL/destination pair; failures carry both
// endpoints for context.
func Fetch(url, outputPath string, cfg utils.DownloadConfig, client utils.HTTPDoer, progressCh chan<- int64) (int64, error) {
	written, err := PerformMultiDownload(cfg, client, url, outputPath, progressCh)
	if err != nil {
		return 0, fmt.Errorf("failed to download file from %s to %s: %w", url, outputPath, err)
	}
	return written, nil
}

var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]+`)

// getFileName asks the server for a usable file name via Content-Disposition.
func getFileName(link string, client utils.HTTPDoer) (string, error) {
	req, err := http.NewRequest("HEAD", link, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	filename := ""
	if contentDisposition := resp.Header.Get("Content-Disposition"); contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if fn, ok := params["filename"]; ok && fn != "" {
				filename = filenameRegex.ReplaceAllString(fn, "_")
			} else if fn, ok := params["filename*"]; ok && fn != "" {
				if strings.HasPrefix(fn, "UTF-8''") {
					unescaped, _ := url.PathUnescape(strings.TrimPrefix(fn, "UTF-8''"))
					filename = filenameRegex.ReplaceAllString(unescaped, "_")
				}
			}
		}
	}
	return filename, nil
}

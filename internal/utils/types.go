package utils

// Downloader is implemented by every source type the scheduler can drive.
type Downloader interface {
	ValidateJob(job *SwoopJob) error
	BuildJob(job *SwoopJob) error
	Download(job *SwoopJob) error
}

type SwoopJob struct {
	ID               string
	JobType          string
	URL              string
	OutputPath       string
	ProgressFunc     func(downloaded, total int64)
	Config           DownloadConfig
	HTTPClientConfig HTTPClientConfig
	Metadata         map[string]any
}

// SizePolicy maps a discovered file size to a planning value, either a
// segment count or a segment size depending on where it is plugged in.
type SizePolicy func(fileSize int64) int64

// DownloadConfig controls segment planning and retry behavior for one
// download. A SegmentSize > 0 pins the segment size; otherwise the count
// policy decides how many segments to carve and the size is derived.
type DownloadConfig struct {
	MaxRetries             int
	MaxConcurrentDownloads int // <= 0 means every segment runs concurrently
	SegmentSize            int64
	SegmentCountPolicy     SizePolicy
	SegmentSizePolicy      SizePolicy
}

// NewDownloadConfig returns the default configuration: 3 attempts, at most
// 32 concurrent batches, and size-tiered planning policies.
func NewDownloadConfig() DownloadConfig {
	return DownloadConfig{
		MaxRetries:             3,
		MaxConcurrentDownloads: 32,
		SegmentCountPolicy:     TieredSegmentCount,
		SegmentSizePolicy:      TieredSegmentSize,
	}
}

// TieredSegmentCount picks a segment count from the file size.
func TieredSegmentCount(fileSize int64) int64 {
	switch {
	case fileSize < 1*MB:
		return 1
	case fileSize < 10*MB:
		return 4
	case fileSize < 100*MB:
		return 8
	default:
		return 16
	}
}

// TieredSegmentSize picks a segment size from the file size.
func TieredSegmentSize(fileSize int64) int64 {
	switch {
	case fileSize < 1*MB:
		return fileSize
	case fileSize < 10*MB:
		return 1 * MB
	case fileSize < 100*MB:
		return 8 * MB
	default:
		return 16 * MB
	}
}

type DownloadEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
	Type       string `yaml:"type"`
}

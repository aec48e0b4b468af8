package segment

import (
	"io"

	"github.com/swoopdl/swoop/internal/utils"
)

// Plan is the outcome of segment planning for one download attempt. The
// planner hands it back instead of writing derived values into the
// configuration.
type Plan struct {
	SegmentCount int64
	SegmentSize  int64
}

type Planner struct {
	cfg utils.DownloadConfig
}

func NewPlanner(cfg utils.DownloadConfig) *Planner {
	return &Planner{cfg: cfg}
}

// PlanSegments decides how many segments to carve and how large each one is.
// A fixed segment size takes precedence; otherwise the count policy picks a
// count and the size is derived by rounding the file size up over it.
func (p *Planner) PlanSegments(fileSize int64) Plan {
	if p.cfg.SegmentSize > 0 {
		return Plan{
			SegmentCount: ceilDiv(fileSize, p.cfg.SegmentSize),
			SegmentSize:  p.cfg.SegmentSize,
		}
	}
	count := int64(1)
	if p.cfg.SegmentCountPolicy != nil {
		count = p.cfg.SegmentCountPolicy(fileSize)
	}
	if count <= 0 {
		count = 1
	}
	return Plan{SegmentCount: count, SegmentSize: ceilDiv(fileSize, count)}
}

// CreateSegments builds the plan's segments bound to a single writer. The
// offsets tile [0, count*size) contiguously; the last segment's nominal
// range may run past the end of the resource, and the server truncates that
// final range response.
func (p *Planner) CreateSegments(plan Plan, writer io.WriterAt) []*Segment {
	segments := make([]*Segment, 0, plan.SegmentCount)
	for i := int64(0); i < plan.SegmentCount; i++ {
		segments = append(segments, New(i*plan.SegmentSize, plan.SegmentSize, writer))
	}
	return segments
}

// PartitionIntoBatches groups segments into at most MaxConcurrentDownloads
// contiguous, order-preserving batches. With the bound disabled (<= 0), or
// with no more segments than the bound, every segment gets its own batch.
func (p *Planner) PartitionIntoBatches(segments []*Segment) [][]*Segment {
	bound := int64(p.cfg.MaxConcurrentDownloads)
	count := int64(len(segments))
	if bound <= 0 || count <= bound {
		batches := make([][]*Segment, 0, count)
		for _, seg := range segments {
			batches = append(batches, []*Segment{seg})
		}
		return batches
	}
	batchSize := ceilDiv(count, bound)
	var batches [][]*Segment
	for start := int64(0); start < count; start += batchSize {
		end := min(start+batchSize, count)
		batches = append(batches, segments[start:end])
	}
	return batches
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

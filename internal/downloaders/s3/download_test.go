package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/swoopdl/swoop/internal/utils"
)

// fakeObjectAPI serves a single in-memory object with range support.
type fakeObjectAPI struct {
	mu      sync.Mutex
	bucket  string
	key     string
	data    []byte
	heads   int
	gets    int
	headErr error
	getErr  error
	short   bool // serve only half of each requested range
}

func (f *fakeObjectAPI) HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heads++
	if f.headErr != nil {
		return nil, f.headErr
	}
	if *params.Bucket != f.bucket || *params.Key != f.key {
		return nil, errors.New("NoSuchKey")
	}
	return &awss3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(f.data)))}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if *params.Bucket != f.bucket || *params.Key != f.key {
		return nil, errors.New("NoSuchKey")
	}

	start, end := int64(0), int64(len(f.data))-1
	if params.Range != nil {
		parts := strings.Split(strings.TrimPrefix(*params.Range, "bytes="), "-")
		start, _ = strconv.ParseInt(parts[0], 10, 64)
		end, _ = strconv.ParseInt(parts[1], 10, 64)
		if end >= int64(len(f.data)) {
			end = int64(len(f.data)) - 1
		}
		if start > end {
			return nil, errors.New("InvalidRange")
		}
	}
	body := f.data[start : end+1]
	if f.short && len(body) > 1 {
		body = body[:len(body)/2]
	}
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
		ContentRange:  aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, len(f.data))),
	}, nil
}

func testObject(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 239)
	}
	return data
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://my-bucket/some/deep/key.bin")
	if err != nil {
		t.Fatalf("parseS3URL: %v", err)
	}
	if bucket != "my-bucket" || key != "some/deep/key.bin" {
		t.Errorf("unexpected parse result: %s / %s", bucket, key)
	}

	for _, bad := range []string{"s3://", "s3://bucket-only", "s3://bucket/"} {
		if _, _, err := parseS3URL(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestS3RangedDownload(t *testing.T) {
	api := &fakeObjectAPI{bucket: "b", key: "k", data: testObject(500)}
	outputPath := filepath.Join(t.TempDir(), "out.bin")

	cfg := utils.NewDownloadConfig()
	cfg.SegmentSize = 100

	written, err := PerformS3Download(context.Background(), cfg, api, "b", "k", outputPath, nil)
	if err != nil {
		t.Fatalf("PerformS3Download: %v", err)
	}
	if written != 500 {
		t.Errorf("expected 500 bytes written, got %d", written)
	}
	if api.heads != 1 {
		t.Errorf("expected a single HeadObject probe, got %d", api.heads)
	}
	if api.gets != 5 {
		t.Errorf("expected 5 ranged GetObject calls, got %d", api.gets)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != string(api.data) {
		t.Error("downloaded object does not match source data")
	}
}

func TestS3DownloadRetriesAndSurfacesLastError(t *testing.T) {
	api := &fakeObjectAPI{bucket: "b", key: "k", data: testObject(100), getErr: errors.New("throttled")}
	cfg := utils.NewDownloadConfig()
	cfg.SegmentSize = 100
	cfg.MaxRetries = 2

	_, err := PerformS3Download(context.Background(), cfg, api, "b", "k", filepath.Join(t.TempDir(), "out.bin"), nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "throttled") {
		t.Errorf("expected last error in chain, got %v", err)
	}
	if api.gets != 2 {
		t.Errorf("expected exactly 2 attempts, got %d GetObject calls", api.gets)
	}
}

func TestS3ShortRangeResponseFailsAttempt(t *testing.T) {
	api := &fakeObjectAPI{bucket: "b", key: "k", data: testObject(200), short: true}
	cfg := utils.NewDownloadConfig()
	cfg.SegmentSize = 100
	cfg.MaxRetries = 2

	_, err := PerformS3Download(context.Background(), cfg, api, "b", "k", filepath.Join(t.TempDir(), "out.bin"), nil)
	if err == nil {
		t.Fatal("expected error for truncated range responses")
	}
	if !strings.Contains(err.Error(), "size mismatch: expected 200 bytes, wrote 100") {
		t.Errorf("expected size mismatch error, got %v", err)
	}
	if api.gets != 4 {
		t.Errorf("expected both attempts to fetch both segments, got %d GetObject calls", api.gets)
	}
}

func TestS3DiscoveryFailureIsTerminal(t *testing.T) {
	api := &fakeObjectAPI{bucket: "b", key: "k", headErr: errors.New("AccessDenied")}
	cfg := utils.NewDownloadConfig()

	_, err := PerformS3Download(context.Background(), cfg, api, "b", "k", filepath.Join(t.TempDir(), "out.bin"), nil)
	if err == nil || !strings.Contains(err.Error(), "AccessDenied") {
		t.Errorf("expected discovery error, got %v", err)
	}
	if api.gets != 0 {
		t.Errorf("expected no GetObject calls after failed discovery, got %d", api.gets)
	}
}

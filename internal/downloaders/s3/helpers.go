package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the slice of the S3 client the downloader needs; tests swap
// in an in-memory implementation.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func getS3Client(profile string) (*s3.Client, error) {
	if profile == "" {
		profile = "default"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithSharedConfigProfile(profile),
		awsconfig.WithRetryMode("adaptive"))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.DisableLogOutputChecksumValidationSkipped = true
	}), nil
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	return parts[0], parts[1], nil
}

// getObjectSize discovers the object size through a HeadObject probe.
func getObjectSize(ctx context.Context, api ObjectAPI, bucket, key string) (int64, error) {
	headObj, err := api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error getting S3 object info: %v", err)
	}
	if headObj.ContentLength == nil || *headObj.ContentLength <= 0 {
		return 0, fmt.Errorf("invalid object size reported for s3://%s/%s", bucket, key)
	}
	return *headObj.ContentLength, nil
}

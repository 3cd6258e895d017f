package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects and configures an artifact backend.
type Config struct {
	Type string `json:",default=fs,options=fs|s3"`
	Dir  string `json:",optional"`

	Bucket          string `json:",optional"`
	Prefix          string `json:",optional"`
	Region          string `json:",default=us-east-1"`
	Endpoint        string `json:",optional"`
	PathStyle       bool   `json:",optional"`
	AccessKeyID     string `json:",optional"`
	SecretAccessKey string `json:",optional"`
}

// Validate checks the fields required by the selected backend.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "", "fs":
		if strings.TrimSpace(c.Dir) == "" {
			return fmt.Errorf("artifact: dir is required for fs store")
		}
	case "s3":
		if strings.TrimSpace(c.Bucket) == "" {
			return fmt.Errorf("artifact: bucket is required for s3 store")
		}
	default:
		return fmt.Errorf("artifact: unsupported store type %q", c.Type)
	}
	return nil
}

// NewStore builds the configured backend.
func NewStore(ctx context.Context, c Config) (Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(c.Type), "s3") {
		client, err := newS3Client(ctx, c)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, c.Bucket, c.Prefix)
	}
	return NewFSStore(c.Dir)
}

func newS3Client(ctx context.Context, c Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("artifact: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	}), nil
}

package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3Source.
type S3Config struct {
	// Bucket is the name of the S3 bucket.
	Bucket string

	// Prefix restricts the listing to keys below it, e.g. "backups/db/".
	Prefix string

	// Region is the AWS region. Defaults to us-east-1.
	Region string

	// Endpoint is an S3-compatible endpoint URL (e.g. MinIO). If empty,
	// the default AWS endpoint for the region is used.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. If either
	// is empty the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// UsePathStyle enables path-style addressing.
	UsePathStyle bool
}

// S3Source lists snapshot objects under a bucket prefix. Only the first
// level below the prefix is considered; a "directory" of objects counts as
// one snapshot named after its common prefix.
type S3Source struct {
	client s3.ListObjectsV2APIClient
	bucket string
	prefix string
	parser *TimeParser
}

// NewS3Source creates an S3 source with the given configuration.
func NewS3Source(ctx context.Context, cfg S3Config, parser *TimeParser) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	} else {
		opts = append(opts, config.WithRegion("us-east-1"))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix, parser), nil
}

// NewS3SourceWithClient creates an S3 source around an existing client.
func NewS3SourceWithClient(client s3.ListObjectsV2APIClient, bucket, prefix string, parser *TimeParser) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		parser: parser,
	}
}

// Name implements Source.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// List implements Source. Entry names are full object keys; the base name
// is what gets parsed.
func (s *S3Source) List(ctx context.Context) (*Listing, error) {
	listing := &Listing{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: failed to list %s: %w", s.Name(), err)
		}

		for _, cp := range page.CommonPrefixes {
			key := aws.ToString(cp.Prefix)
			listing.add(s.parser, baseName(key), key)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == s.prefix {
				continue
			}
			listing.add(s.parser, baseName(key), key)
		}
	}
	return listing, nil
}

func baseName(key string) string {
	return path.Base(strings.TrimSuffix(key, "/"))
}

package coupon

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the part of the S3 API the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// bucketLoader reads gzipped policy files from one S3 bucket.
type bucketLoader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader builds an S3 client from the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3LoaderWithClient(s3.NewFromConfig(awsCfg), bucket, logger), nil
}

// NewS3LoaderWithClient wraps an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &bucketLoader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "coupon-s3-loader").Str("bucket", bucket).Logger(),
	}
}

// Load fetches the object stored under key.
func (l *bucketLoader) Load(ctx context.Context, key string) (PolicySet, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to get policy object")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	set, err := readGzipPolicies(ctx, out.Body, "s3://"+l.bucket+"/"+key)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to read policy object")
		return nil, err
	}

	l.logger.Info().Str("key", key).Int("policies_loaded", set.Size()).Msg("policy object loaded")
	return set, nil
}

// fallbackLoader prefers the bucket and falls back to the local disk.
type fallbackLoader struct {
	remote Loader
	local  Loader
	prefix string
	logger zerolog.Logger
}

// NewFallbackLoader returns a loader that reads prefix+path from remote and,
// when that fails or remote is disabled, path from local.
func NewFallbackLoader(remote, local Loader, prefix string, remoteEnabled bool, logger zerolog.Logger) Loader {
	if !remoteEnabled {
		remote = nil
	}
	return &fallbackLoader{
		remote: remote,
		local:  local,
		prefix: prefix,
		logger: logger.With().Str("component", "coupon-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) (PolicySet, error) {
	if l.remote == nil {
		return l.local.Load(ctx, path)
	}

	set, err := l.remote.Load(ctx, l.prefix+path)
	if err == nil {
		return set, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	l.logger.Warn().
		Err(err).
		Str("key", l.prefix+path).
		Str("local_path", path).
		Msg("remote policy file unavailable, reading local copy")

	return l.local.Load(ctx, path)
}

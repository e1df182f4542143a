package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vidgen/internal/config"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// ObjectPutter is the subset of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher mirrors finished renders into an S3-compatible bucket.
type Publisher struct {
	client    ObjectPutter
	bucket    string
	keyPrefix string
	publicURL string
	endpoint  string
	logger    *slog.Logger
}

// NewPublisher builds an S3 client from the storage settings. A custom
// endpoint (R2, MinIO) switches the client to path-style addressing.
func NewPublisher(ctx context.Context, cfg config.Storage, logger *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "configure", "storage.bucket is empty", nil)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "configure", "storage credentials missing", nil)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "load aws config", "", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewPublisherWithClient(client, cfg, logger), nil
}

// NewPublisherWithClient wires a publisher around an existing client.
func NewPublisherWithClient(client ObjectPutter, cfg config.Storage, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		logger:    logging.NewComponentLogger(logger, "storage"),
	}
}

// Bucket returns the destination bucket.
func (p *Publisher) Bucket() string { return p.bucket }

// Key returns the object key for a render: {prefix}/{seriesDir}/{file}.
func (p *Publisher) Key(seriesDir, fileName string) string {
	parts := make([]string, 0, 3)
	if p.keyPrefix != "" {
		parts = append(parts, p.keyPrefix)
	}
	if seriesDir != "" {
		parts = append(parts, seriesDir)
	}
	parts = append(parts, fileName)
	return path.Join(parts...)
}

// PublicURL returns the address a key is reachable at. Without a configured
// public URL the bucket endpoint is used.
func (p *Publisher) PublicURL(key string) string {
	switch {
	case p.publicURL != "":
		return p.publicURL + "/" + key
	case p.endpoint != "":
		return p.endpoint + "/" + p.bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
	}
}

// Upload streams the file at localPath to key and returns its public URL.
func (p *Publisher) Upload(ctx context.Context, localPath, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "publish", "open render", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "publish", "stat render", localPath, err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "put object", key, err)
	}

	url := p.PublicURL(key)
	p.logger.Info("render published",
		logging.String("bucket", p.bucket),
		logging.String("key", key),
		logging.Int64("bytes", info.Size()),
		logging.String("url", url),
		logging.String(logging.FieldEventType, "render_published"),
	)
	return url, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".srt":
		return "application/x-subrip"
	case ".ass":
		return "text/x-ssa"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

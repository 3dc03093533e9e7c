// Package sync publishes exported documents to S3-compatible object storage.
package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Paintersrp/nervous/internal/config"
)

// Uploader is the subset of the S3 upload manager the publisher needs.
type Uploader interface {
	Upload(
		ctx context.Context,
		input *s3.PutObjectInput,
		opts ...func(*manager.Uploader),
	) (*manager.UploadOutput, error)
}

type Publisher struct {
	uploader Uploader
	logger   *slog.Logger
}

// NewPublisher builds an S3 publisher. Region, endpoint and static keys are
// taken from cfg when set; everything else comes from the default AWS chain.
func NewPublisher(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Publisher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return NewPublisherWithUploader(manager.NewUploader(client), logger), nil
}

func NewPublisherWithUploader(uploader Uploader, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{uploader: uploader, logger: logger}
}

// Publish uploads the file at localPath to loc.
func (p *Publisher) Publish(ctx context.Context, localPath string, loc Location, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   file,
	}
	if strings.TrimSpace(contentType) != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := p.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", loc, err)
	}

	p.logger.Info("export published",
		slog.String("location", loc.String()),
		slog.String("source", filepath.Base(localPath)),
	)
	return nil
}

package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "bondflow/config"
	"bondflow/logger"
)

// S3Archiver uploads flushed ledger batches to a bucket, partitioned by
// ledger name and date.
type S3Archiver struct {
	cfg      appconfig.S3Config
	version  string
	s3Client *s3.Client
	log      *logger.Log
}

func NewS3Archiver(cfg *appconfig.Config) (*S3Archiver, error) {
	log := logger.GetLogger()

	ctx := context.Background()
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	log.WithComponent("s3_archiver").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("s3 archiver initialized")

	return &S3Archiver{
		cfg:      cfg.Storage.S3,
		version:  cfg.Desk.Version,
		s3Client: s3Client,
		log:      log,
	}, nil
}

// Publish implements BatchSink.
func (a *S3Archiver) Publish(ctx context.Context, batch Batch) {
	key := path.Join(
		fmt.Sprintf("ledger=%s", batch.Ledger),
		fmt.Sprintf("date=%s", batch.Timestamp.Format("2006-01-02")),
		batch.Filename,
	)

	log := a.log.WithComponent("s3_archiver").WithFields(logger.Fields{
		"batch_id": batch.BatchID,
		"s3_key":   key,
		"records":  batch.RecordCount,
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(batch.Data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"content-type":     "parquet",
			"bondflow-version": a.version,
		},
	}

	if _, err := a.s3Client.PutObject(ctx, input); err != nil {
		log.WithError(err).Error("failed to upload batch to S3")
		return
	}
	log.Info("batch archived to S3")
}

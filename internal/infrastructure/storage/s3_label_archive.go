// Package storage keeps copies of shipping labels in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	infraconfig "github.com/erp/carrier-transport/internal/infrastructure/config"
)

// Ensure S3LabelArchive implements LabelArchive
var _ shipping.LabelArchive = (*S3LabelArchive)(nil)

// ErrInvalidLabelContent is returned for label content that is not valid base64
var ErrInvalidLabelContent = errors.New("storage: label content is not valid base64")

// S3LabelArchive stores decoded label documents in a bucket.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3LabelArchive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	expiration    time.Duration
	newID         func() string
	logger        *zap.Logger
}

// S3LabelArchiveOption is a functional option for configuring S3LabelArchive
type S3LabelArchiveOption func(*S3LabelArchive)

// WithLogger sets a custom logger for S3LabelArchive
func WithLogger(logger *zap.Logger) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.logger = logger
	}
}

// WithIDGenerator sets the generator of the unique part of object keys
func WithIDGenerator(newID func() string) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.newID = newID
	}
}

// NewS3LabelArchive creates a new S3LabelArchive from configuration
func NewS3LabelArchive(cfg *infraconfig.StorageConfig, opts ...S3LabelArchiveOption) (*S3LabelArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // session token (not used for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	// An empty endpoint means AWS S3 itself
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// S3-compatible stores do not all accept trailing checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	archive := &S3LabelArchive{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		expiration:    cfg.PresignExpiration,
		newID:         func() string { return uuid.New().String() },
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	if archive.expiration == 0 {
		archive.expiration = 15 * time.Minute
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3LabelArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating label bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive decodes the label and uploads it under
// <prefix>/labels/<shipmentId>/<id>-<fileName>. It returns the s3:// location.
func (s *S3LabelArchive) Archive(ctx context.Context, attachment shipping.LabelAttachment) (string, error) {
	data, err := base64.StdEncoding.DecodeString(attachment.Base64EncodedContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLabelContent, err)
	}

	key := s.objectKey(attachment)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(attachment.FileName)),
		Metadata: map[string]string{
			"shipment-id": strconv.FormatInt(attachment.ShipmentID, 10),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload label: %w", err)
	}

	location := "s3://" + s.bucket + "/" + key
	s.logger.Debug("label archived",
		zap.Int64("shipment_id", attachment.ShipmentID),
		zap.String("location", location),
		zap.Int("bytes", len(data)),
	)
	return location, nil
}

// DownloadURL returns a presigned URL for an archived label.
// location is a value returned by Archive.
func (s *S3LabelArchive) DownloadURL(ctx context.Context, location string) (string, time.Time, error) {
	key, ok := strings.CutPrefix(location, "s3://"+s.bucket+"/")
	if !ok || key == "" {
		return "", time.Time{}, fmt.Errorf("storage: %q is not a location in bucket %s", location, s.bucket)
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return presignReq.URL, time.Now().Add(s.expiration), nil
}

// Bucket returns the bucket name
func (s *S3LabelArchive) Bucket() string {
	return s.bucket
}

func (s *S3LabelArchive) objectKey(attachment shipping.LabelAttachment) string {
	name := s.newID() + "-" + path.Base(attachment.FileName)
	return path.Join(s.prefix, "labels", strconv.FormatInt(attachment.ShipmentID, 10), name)
}

func contentType(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".zpl":
		return "application/x-zpl"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

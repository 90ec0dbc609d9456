package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/config"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

const presignTTL = 15 * time.Minute

// Presigner is the slice of the S3 presign client the service needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Service struct {
	presigner Presigner
	bucket    string
	endpoint  string
	logger    *slog.Logger
}

// NewService builds the presigning service from object storage settings.
// Returns an error when storage is not configured.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if !cfg.MediaEnabled() {
		return nil, apperr.Config("media uploads need S3_BUCKET and credentials")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("media_service_aws_config_failed: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.S3Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		// R2 and MinIO want path-style addressing.
		options.UsePathStyle = true
	})

	return NewPresignService(s3.NewPresignClient(client), cfg.S3Bucket, cfg.S3Endpoint, logger), nil
}

// NewPresignService wires the service around an existing presigner.
func NewPresignService(presigner Presigner, bucket, endpoint string, logger *slog.Logger) *Service {
	return &Service{
		presigner: presigner,
		bucket:    bucket,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		logger:    logger,
	}
}

// PresignUpload grants a short-lived PUT URL for one object. The key is
// generated server-side; clients only choose the kind and filename.
func (service *Service) PresignUpload(ctx context.Context, uploader *sec.Identity, kind Kind, filename string) (*Upload, error) {
	validator := &validate.Validator{}
	validator.Required(FieldFilename, filename).MaxLen(FieldFilename, filename, 255).
		OneOf(FieldKind, string(kind), string(KindImage), string(KindVideo), string(KindFile))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if !Allowed(kind, filename) {
		return nil, apperr.ValidationError(fmt.Sprintf("File type is not allowed for %s uploads", kind))
	}

	key := fmt.Sprintf("uploads/%s/%s/%s%s", kind, uploader.UserID, uuidv7.New(), extOf(filename))

	request, err := service.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(service.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return nil, apperr.ServiceUnavailable("Object storage is unavailable").WithCause(err)
	}

	service.logger.Info("media_presigned",
		slog.String("key", key),
		slog.String("uploader_id", uploader.UserID),
	)
	return &Upload{
		Key:       key,
		UploadURL: request.URL,
		PublicURL: fmt.Sprintf("%s/%s/%s", service.endpoint, service.bucket, key),
	}, nil
}

func extOf(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return strings.ToLower(filename[idx:])
	}
	return ""
}

package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	"homestay/shared/constant"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObjectKey = "object_key"
	otelAttrBucket    = "bucket"
	defaultRegion     = "auto"
)

type Object struct {
	Directory   string
	FileName    string
	ContentType string
	Body        io.Reader
}

// Storage keeps public objects in one bucket and addresses them by their public URL.
type Storage interface {
	Upload(ctx context.Context, object Object) (url string, err error)
	DeleteByURL(ctx context.Context, url string) error
	ObjectKeyFromURL(url string) (key string)
}

type storageImpl struct {
	client *s3.Client
	config *config.Config
	otel   otel.Otel
}

func New(config *config.Config, otel otel.Otel) Storage {
	staticProvider := credentials.NewStaticCredentialsProvider(
		config.External.S3.AccessKeyID,
		config.External.S3.SecretAccessKey,
		"",
	)

	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(staticProvider),
		awsConfig.WithRegion(defaultRegion),
	)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.External.S3.APIEndpoint)
		o.UsePathStyle = true
	})

	return &storageImpl{
		client: client,
		config: config,
		otel:   otel,
	}
}

func (svc *storageImpl) Upload(ctx context.Context, object Object) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.config.External.S3.BucketName
	objectKey := path.Join(object.Directory, object.FileName)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: objectKey,
		otelAttrBucket:    bucket,
	})

	buf := bytes.NewBuffer(nil)
	if _, err = buf.ReadFrom(object.Body); err != nil {
		return constant.Empty, fmt.Errorf("failed to read file: %w", err)
	}

	reader := bytes.NewReader(buf.Bytes())

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(objectKey),
		Body:          reader,
		ContentType:   aws.String(object.ContentType),
		ContentLength: aws.Int64(reader.Size()),
	})
	if err != nil {
		log.Error().Err(err).Str("key", objectKey).Msg("failed to upload file to S3")

		return constant.Empty, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(svc.config.External.S3.PublicDomain, "/"), objectKey), nil
}

func (svc *storageImpl) DeleteByURL(ctx context.Context, url string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteByURL")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	objectKey := svc.ObjectKeyFromURL(url)
	if objectKey == constant.Empty {
		return fmt.Errorf("url %q does not belong to the storage bucket", url)
	}

	bucket := svc.config.External.S3.BucketName

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: objectKey,
		otelAttrBucket:    bucket,
	})

	_, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Error().Err(err).Str("key", objectKey).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// ObjectKeyFromURL accepts URLs on the public domain or on the API endpoint with the bucket in the path.
func (svc *storageImpl) ObjectKeyFromURL(url string) string {
	return objectKeyFromURL(svc.config.External.S3.PublicDomain, svc.config.External.S3.APIEndpoint, svc.config.External.S3.BucketName, url)
}

func objectKeyFromURL(publicDomain, apiEndpoint, bucket, url string) string {
	prefixes := []string{}

	if publicDomain != "" {
		prefixes = append(prefixes, strings.TrimSuffix(publicDomain, "/")+"/")
	}

	if apiEndpoint != "" {
		prefixes = append(prefixes, fmt.Sprintf("%s/%s/", strings.TrimSuffix(apiEndpoint, "/"), bucket))
	}

	for _, prefix := range prefixes {
		if key, ok := strings.CutPrefix(url, prefix); ok && key != "" {
			return key
		}
	}

	return constant.Empty
}

// Package archive copies finished downloads to S3 or an S3-compatible store.
package archive

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"clipfetch/internal/config"
	"clipfetch/internal/services"
)

// Uploader stores a local file under key.
type Uploader interface {
	Upload(ctx context.Context, key, path string, metadata map[string]string) error
}

// objectAPI is the slice of the S3 client the uploader needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Uploader writes objects into a single bucket.
type S3Uploader struct {
	client objectAPI
	bucket string
}

// NewS3Uploader builds an uploader from the archive settings. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies. A custom endpoint switches to path-style
// addressing for MinIO and similar services.
func NewS3Uploader(ctx context.Context, cfg config.Archive) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "init", "archive.bucket must be set", nil)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "init", "load AWS config", err)
	}

	var client *s3.Client
	if cfg.EndpointURL != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}
	return newS3Uploader(client, cfg.Bucket), nil
}

func newS3Uploader(client objectAPI, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket}
}

// Bucket returns the destination bucket name.
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// Upload streams the file at path to key with the given user metadata.
func (u *S3Uploader) Upload(ctx context.Context, key, path string, metadata map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "archive", "upload", "open "+path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return services.Wrap(services.ErrNotFound, "archive", "upload", "stat "+path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "archive", "upload", path+" is a directory", nil)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType(path)),
		ContentLength: aws.Int64(info.Size()),
		Metadata:      metadata,
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return services.Wrap(services.ErrTransient, "archive", "upload",
			fmt.Sprintf("put s3://%s/%s", u.bucket, key), err)
	}
	return nil
}

// Ping checks that the bucket exists and the credentials can reach it.
func (u *S3Uploader) Ping(ctx context.Context) error {
	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)}); err != nil {
		return services.Wrap(services.ErrConfiguration, "archive", "ping", "head bucket "+u.bucket, err)
	}
	return nil
}

// ObjectKey places fileName under prefix/yyyy/mm using t's UTC date.
func ObjectKey(prefix, fileName string, t time.Time) string {
	t = t.UTC()
	parts := []string{}
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		parts = append(parts, trimmed)
	}
	parts = append(parts, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), fileName)
	return path.Join(parts...)
}

// UploadFile archives the local file at filePath under prefix and returns the
// object key it was stored at.
func UploadFile(ctx context.Context, up Uploader, prefix, filePath string, metadata map[string]string, now time.Time) (string, error) {
	if up == nil {
		return "", errors.New("archive: uploader required")
	}
	key := ObjectKey(prefix, filepath.Base(filePath), now)
	if err := up.Upload(ctx, key, filePath, metadata); err != nil {
		return "", err
	}
	return key, nil
}

// mediaTypes covers what yt-dlp produces; Go's builtin mime table lacks most of them.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".txt":  "text/plain; charset=utf-8",
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

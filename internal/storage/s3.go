package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/metrics"
)

// one initial attempt plus two retries
const maxUploadRetries = 2

// ObjectAPI is the slice of the S3 client the store uses. Tests substitute a
// fake to count attempts.
type ObjectAPI interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// StoredFile is what a successful upload returns; handlers embed it into the
// owning record.
type StoredFile struct {
	URL          string
	Key          string
	Folder       string
	ResourceKind string
	OriginalName string
	CleanName    string
	Size         int64
	ContentType  string
	Format       string
}

// DeleteResult is the tagged outcome of a best-effort delete. Delete never
// returns an error: remote failures must not block the local mutation that
// triggered them.
type DeleteResult struct {
	OK     bool
	Reason string
}

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

type BlobStore struct {
	api      ObjectAPI
	uploader *manager.Uploader
	bucket   string
	region   string
	endpoint string
	timeout  time.Duration
	interval time.Duration // pause between retry attempts
	log      *zap.SugaredLogger
}

func NewBlobStore(ctx context.Context, cfg Config, log *zap.SugaredLogger) (*BlobStore, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newBlobStore(client, cfg, log), nil
}

func newBlobStore(api ObjectAPI, cfg Config, log *zap.SugaredLogger) *BlobStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &BlobStore{
		api:      api,
		uploader: manager.NewUploader(api),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
		timeout:  timeout,
		interval: time.Second,
		log:      log,
	}
}

// ResourceKind classifies a content type the way the store reports resources.
func ResourceKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw"
	}
}

// Upload places buf into the store under folder/cleanName. Each attempt races
// a wall-clock deadline; timeout-shaped failures are retried up to two more
// times, anything else fails immediately. The tenant id is attached as object
// metadata and tagging so offboarding can find everything later.
func (s *BlobStore) Upload(ctx context.Context, buf []byte, cleanName, folder, contentType, tenantID string) (*StoredFile, error) {
	if len(buf) == 0 {
		return nil, apperr.Validation("empty file buffer")
	}
	if tenantID == "" {
		return nil, apperr.Validation("firm id is required for uploads")
	}

	key := folder + "/" + cleanName
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		// never overwrite an existing object; clean names are unique
		IfNoneMatch: aws.String("*"),
		Metadata:    map[string]string{"tenant-id": tenantID},
		Tagging:     aws.String("tenant=" + url.QueryEscape(tenantID)),
	}

	var loc string
	op := func() error {
		metrics.UploadAttempts.Inc()
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		input.Body = bytes.NewReader(buf)
		out, err := s.uploader.Upload(attemptCtx, input)
		if err != nil {
			if isTimeoutShaped(err) {
				metrics.UploadTimeouts.Inc()
				s.log.Warnw("upload attempt timed out", "key", key, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		loc = out.Location
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.interval), maxUploadRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		metrics.UploadFailures.Inc()
		if isTimeoutShaped(err) {
			return nil, apperr.Wrap(apperr.KindTimeout,
				"file upload timed out, please try a smaller file", err)
		}
		return nil, apperr.Wrap(apperr.KindProvider, "storage provider rejected the upload", err)
	}

	if loc == "" {
		loc = s.objectURL(key)
	}
	return &StoredFile{
		URL:          loc,
		Key:          key,
		Folder:       folder,
		ResourceKind: ResourceKind(contentType),
		CleanName:    cleanName,
		Size:         int64(len(buf)),
		ContentType:  contentType,
		Format:       strings.TrimPrefix(strings.ToLower(extOf(cleanName)), "."),
	}, nil
}

// Delete removes one object, best effort. Failures are logged and reported in
// the result, never returned as errors.
func (s *BlobStore) Delete(ctx context.Context, key string) DeleteResult {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Warnw("storage delete failed", "key", key, "error", err)
		return DeleteResult{OK: false, Reason: err.Error()}
	}
	return DeleteResult{OK: true}
}

// DeleteTenantPrefix removes every object under tenants/{tenantID}/. Used for
// firm offboarding. Best effort: partial failures are collected, not raised.
func (s *BlobStore) DeleteTenantPrefix(ctx context.Context, tenantID string) (int, []error) {
	prefix := "tenants/" + tenantID + "/"
	var (
		deleted int
		errs    []error
		token   *string
	)
	for {
		page, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			errs = append(errs, err)
			return deleted, errs
		}
		if len(page.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
			for _, obj := range page.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
			}
			out, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				errs = append(errs, err)
			} else {
				deleted += len(ids) - len(out.Errors)
				for _, e := range out.Errors {
					errs = append(errs, fmt.Errorf("delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
				}
			}
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}
	if len(errs) > 0 {
		s.log.Warnw("tenant prefix delete finished with errors", "tenant", tenantID, "deleted", deleted, "errors", len(errs))
	}
	return deleted, errs
}

func (s *BlobStore) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// isTimeoutShaped reports whether an upload failure looks like a stalled or
// slow connection rather than a definitive provider rejection. Only these are
// worth retrying.
func isTimeoutShaped(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "RequestTimeout" || code == "RequestCanceled" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

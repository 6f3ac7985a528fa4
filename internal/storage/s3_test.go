package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/logger"
)

// fakeAPI scripts PutObject outcomes and counts every call.
type fakeAPI struct {
	putErrs    []error // one entry per attempt; nil means success
	putCalls   int
	delErr     error
	delCalls   int
	listPages  []*s3.ListObjectsV2Output
	listCalls  int
	batchErrs  []error
	batchCalls int
}

func (f *fakeAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	idx := f.putCalls
	f.putCalls++
	if idx < len(f.putErrs) && f.putErrs[idx] != nil {
		return nil, f.putErrs[idx]
	}
	return &s3.PutObjectOutput{}, nil
}

// multipart ops are never reached with small test bodies

func (f *fakeAPI) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("test")}, nil
}

func (f *fakeAPI) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return &s3.UploadPartOutput{}, nil
}

func (f *fakeAPI) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeAPI) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delCalls++
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	idx := f.listCalls
	f.listCalls++
	if idx < len(f.listPages) {
		return f.listPages[idx], nil
	}
	return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeAPI) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	idx := f.batchCalls
	f.batchCalls++
	if idx < len(f.batchErrs) && f.batchErrs[idx] != nil {
		return nil, f.batchErrs[idx]
	}
	return &s3.DeleteObjectsOutput{}, nil
}

type providerErr struct {
	code string
}

func (e *providerErr) Error() string                 { return e.code }
func (e *providerErr) ErrorCode() string             { return e.code }
func (e *providerErr) ErrorMessage() string          { return e.code }
func (e *providerErr) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

var _ smithy.APIError = (*providerErr)(nil)

func testStore(api ObjectAPI) *BlobStore {
	s := newBlobStore(api, Config{Region: "us-east-1", Bucket: "bucket"}, logger.Nop())
	s.interval = time.Millisecond
	return s
}

func TestUploadRetriesExhausted(t *testing.T) {
	api := &fakeAPI{putErrs: []error{
		context.DeadlineExceeded,
		context.DeadlineExceeded,
		context.DeadlineExceeded,
	}}
	s := testStore(api)

	_, err := s.Upload(context.Background(), []byte("data"), "a.pdf", "tenants/f/general/general/pdfs", "application/pdf", "f")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
	assert.Equal(t, 3, api.putCalls)
}

func TestUploadRetriesThenSucceeds(t *testing.T) {
	api := &fakeAPI{putErrs: []error{
		&providerErr{code: "RequestTimeout"},
		context.DeadlineExceeded,
		nil,
	}}
	s := testStore(api)

	stored, err := s.Upload(context.Background(), []byte("data"), "a.pdf", "tenants/f/general/general/pdfs", "application/pdf", "f")
	require.NoError(t, err)
	assert.Equal(t, 3, api.putCalls)
	assert.Equal(t, "tenants/f/general/general/pdfs/a.pdf", stored.Key)
	assert.Equal(t, "raw", stored.ResourceKind)
	assert.Equal(t, int64(4), stored.Size)
	assert.Equal(t, "pdf", stored.Format)
	assert.NotEmpty(t, stored.URL)
}

func TestUploadNonTimeoutIsNotRetried(t *testing.T) {
	api := &fakeAPI{putErrs: []error{
		&providerErr{code: "AccessDenied"},
	}}
	s := testStore(api)

	_, err := s.Upload(context.Background(), []byte("data"), "a.pdf", "tenants/f/general/general/pdfs", "application/pdf", "f")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProvider))
	assert.Equal(t, 1, api.putCalls)
}

func TestUploadRejectsEmptyBuffer(t *testing.T) {
	api := &fakeAPI{}
	s := testStore(api)

	_, err := s.Upload(context.Background(), nil, "a.pdf", "f", "application/pdf", "f")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Zero(t, api.putCalls)
}

func TestDeleteIsSoft(t *testing.T) {
	api := &fakeAPI{delErr: errors.New("boom")}
	s := testStore(api)

	res := s.Delete(context.Background(), "some/key")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "boom")
	assert.Equal(t, 1, api.delCalls)

	api.delErr = nil
	res = s.Delete(context.Background(), "some/key")
	assert.True(t, res.OK)
}

func TestDeleteTenantPrefix(t *testing.T) {
	api := &fakeAPI{listPages: []*s3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				{Key: aws.String("tenants/f/a.pdf")},
				{Key: aws.String("tenants/f/b.pdf")},
			},
			IsTruncated: aws.Bool(false),
		},
	}}
	s := testStore(api)

	deleted, errs := s.DeleteTenantPrefix(context.Background(), "f")
	assert.Equal(t, 2, deleted)
	assert.Empty(t, errs)
	assert.Equal(t, 1, api.batchCalls)
}

func TestIsTimeoutShaped(t *testing.T) {
	assert.True(t, isTimeoutShaped(context.DeadlineExceeded))
	assert.True(t, isTimeoutShaped(&providerErr{code: "RequestTimeout"}))
	assert.True(t, isTimeoutShaped(errors.New("dial tcp: i/o timeout")))
	assert.False(t, isTimeoutShaped(&providerErr{code: "NoSuchBucket"}))
	assert.False(t, isTimeoutShaped(nil))
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
	getErr  error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func stubS3(t *testing.T, fake *fakeObjects) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	var captured s3.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "admin", creds.AccessKeyID)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		for _, fn := range optFns {
			fn(&captured)
		}
		return fake
	}
	return &captured
}

func testS3Options() S3Options {
	return S3Options{
		Bucket:       "shares",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		AccessKey:    "admin",
		SecretKey:    "secretpassword",
	}
}

func TestS3Store_PutGet(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}}
	opts := stubS3(t, fake)

	store, err := NewS3Store(context.Background(), testS3Options())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	loc, err := store.Put(context.Background(), "paciente01/2026/03/07/a.cmg", []byte("ct"))
	require.NoError(t, err)
	assert.Equal(t, "s3://shares/paciente01/2026/03/07/a.cmg", loc)
	assert.Equal(t, []byte("ct"), fake.objects["shares/paciente01/2026/03/07/a.cmg"])

	got, err := store.Get(context.Background(), "paciente01/2026/03/07/a.cmg")
	require.NoError(t, err)
	assert.Equal(t, []byte("ct"), got)
}

func TestS3Store_GetMissing(t *testing.T) {
	stubS3(t, &fakeObjects{objects: map[string][]byte{}})

	store, err := NewS3Store(context.Background(), testS3Options())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nobody.cmg")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_BackendErrors(t *testing.T) {
	stubS3(t, &fakeObjects{putErr: errors.New("put-fail"), getErr: errors.New("get-fail")})

	store, err := NewS3Store(context.Background(), testS3Options())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "a.cmg", []byte("x"))
	assert.ErrorContains(t, err, "put-fail")
	_, err = store.Get(context.Background(), "a.cmg")
	assert.ErrorContains(t, err, "get-fail")
}

func TestNewS3Store_ConfigErrors(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err = NewS3Store(context.Background(), testS3Options())
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.ErrorContains(t, err, "load-fail")
}

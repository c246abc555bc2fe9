package backup

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/dmitrijs2005/accountkeeper/internal/config"
)

func stubAWS(t *testing.T) (*awsconfig.LoadOptions, *s3.Options) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	lo := &awsconfig.LoadOptions{}
	so := &s3.Options{}
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			if err := fn(lo); err != nil {
				return aws.Config{}, err
			}
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(so)
		}
		return &s3.Client{}
	}
	return lo, so
}

func TestNewS3Mirror_RequiresBucket(t *testing.T) {
	stubAWS(t)
	_, err := NewS3Mirror(context.Background(), appconfig.Mirror{Enabled: true})
	require.Error(t, err)
}

func TestNewS3Mirror_Options(t *testing.T) {
	lo, so := stubAWS(t)

	m, err := NewS3Mirror(context.Background(), appconfig.Mirror{
		Enabled:   true,
		Bucket:    "snapshots",
		Region:    "eu-central-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "AK",
		SecretKey: "SK",
		Prefix:    "accountkeeper/",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", lo.Region)
	require.NotNil(t, lo.Credentials)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AK", creds.AccessKeyID)
	assert.Equal(t, "SK", creds.SecretAccessKey)

	require.NotNil(t, so.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *so.BaseEndpoint)
	assert.True(t, so.UsePathStyle)

	assert.Equal(t, "accountkeeper/accounts_20250301_090000.json", m.Key("accounts_20250301_090000.json"))
}

func TestNewS3Mirror_DefaultChain(t *testing.T) {
	lo, so := stubAWS(t)

	m, err := NewS3Mirror(context.Background(), appconfig.Mirror{Bucket: "b"})
	require.NoError(t, err)
	assert.Nil(t, lo.Credentials)
	assert.Nil(t, so.BaseEndpoint)
	assert.False(t, so.UsePathStyle)
	assert.Equal(t, "x.json", m.Key("x.json"))
}

func TestNewS3Mirror_LoadConfigError(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	_, err := NewS3Mirror(context.Background(), appconfig.Mirror{Bucket: "b"})
	require.ErrorContains(t, err, "no profile")
}

func TestS3Mirror_Upload(t *testing.T) {
	stubAWS(t)
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		body = b
		return &s3.PutObjectOutput{}, nil
	}

	m, err := NewS3Mirror(context.Background(), appconfig.Mirror{Bucket: "snapshots", Prefix: "ak"})
	require.NoError(t, err)
	require.NoError(t, m.Upload(context.Background(), "accounts_1.json", []byte(`{"accounts":[]}`)))

	require.NotNil(t, got)
	assert.Equal(t, "snapshots", aws.ToString(got.Bucket))
	assert.Equal(t, "ak/accounts_1.json", aws.ToString(got.Key))
	assert.Equal(t, "application/json", aws.ToString(got.ContentType))
	assert.JSONEq(t, `{"accounts":[]}`, string(body))
}

func TestS3Mirror_UploadError(t *testing.T) {
	stubAWS(t)
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	boom := errors.New("access denied")
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, boom
	}

	m, err := NewS3Mirror(context.Background(), appconfig.Mirror{Bucket: "snapshots"})
	require.NoError(t, err)
	err = m.Upload(context.Background(), "a.json", []byte("{}"))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a.json")
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/idea-inbox-service/pkg/storage/aws_s3"
	"github.com/haierkeys/idea-inbox-service/pkg/storage/local_fs"
	"github.com/haierkeys/idea-inbox-service/pkg/storage/webdav"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_InvalidType(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, ErrInvalidStorageType)

	_, err = NewClient(&Config{})
	assert.ErrorIs(t, err, ErrInvalidStorageType)

	_, err = NewClient(&Config{Type: "ftp"})
	assert.ErrorIs(t, err, ErrInvalidStorageType)
}

func TestNewClient_LocalFS(t *testing.T) {
	root := t.TempDir()
	s, err := NewClient(&Config{Type: LOCAL, SavePath: root})
	require.NoError(t, err)
	assert.IsType(t, &local_fs.LocalFS{}, s)

	key, err := s.SendContent(context.Background(), "b.zip", []byte("x"), "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "b.zip", key)
	_, err = os.Stat(filepath.Join(root, "b.zip"))
	assert.NoError(t, err)
}

func TestNewClient_RemoteConstructors(t *testing.T) {
	s, err := NewClient(&Config{Type: S3, Region: "us-east-1", BucketName: "b", AccessKeyID: "id", AccessKeySecret: "secret"})
	require.NoError(t, err)
	assert.IsType(t, &aws_s3.S3{}, s)

	_, err = NewClient(&Config{Type: R2, BucketName: "b"})
	assert.Error(t, err, "r2 requires an account id")

	s, err = NewClient(&Config{Type: R2, AccountID: "acc", BucketName: "b"})
	require.NoError(t, err)
	assert.IsType(t, &aws_s3.S3{}, s)

	_, err = NewClient(&Config{Type: MinIO, BucketName: "b"})
	assert.Error(t, err, "minio requires an endpoint")

	s, err = NewClient(&Config{Type: WebDAV, Endpoint: "http://127.0.0.1:1/dav"})
	require.NoError(t, err)
	assert.IsType(t, &webdav.WebDAV{}, s)
}

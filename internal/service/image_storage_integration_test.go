//go:build integration

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultMinIOTestImage = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"

// startMinIO runs a throwaway MinIO server and returns its host:port.
func startMinIO(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	image := strings.TrimSpace(os.Getenv("MINIO_TEST_IMAGE"))
	if image == "" {
		image = defaultMinIOTestImage
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data", "--address", ":9000"},
			WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start minio container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)
	endpoint := net.JoinHostPort(host, port.Port())

	client, err := minio.New(endpoint, &minio.Options{Creds: credentials.NewStaticV4("minioadmin", "minioadmin", "")})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := client.ListBuckets(ctx)
		return err == nil
	}, 20*time.Second, 250*time.Millisecond, "minio never became ready")
	return endpoint
}

func TestMinIOImageStorageRoundTrip(t *testing.T) {
	endpoint := startMinIO(t)
	bucket := fmt.Sprintf("recipes-it-%d", time.Now().UnixNano())
	storage, err := NewMinIOImageStorage(endpoint, "minioadmin", "minioadmin", bucket, false, 1<<20)
	require.NoError(t, err)
	ctx := context.Background()

	key, err := storage.Upload(ctx, "pancakes.png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.True(t, strings.HasSuffix(key, "-pancakes.png"))

	exists, err := storage.Client().BucketExists(ctx, bucket)
	require.NoError(t, err)
	assert.True(t, exists, "bucket is created on first upload")

	obj, err := storage.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, body)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.EqualValues(t, len(pngHeader), obj.Size)

	require.NoError(t, storage.Delete(ctx, key))
	_, err = storage.Open(ctx, key)
	assert.True(t, errors.Is(err, ErrImageNotFound), "got %v", err)
}

func TestMinIOImageStorageRejectsNonImages(t *testing.T) {
	endpoint := startMinIO(t)
	storage, err := NewMinIOImageStorage(endpoint, "minioadmin", "minioadmin", "recipes-reject", false, 1<<20)
	require.NoError(t, err)

	_, err = storage.Upload(context.Background(), "notes.txt", strings.NewReader("just text"), 9)
	assert.ErrorIs(t, err, ErrInvalidImageType)
	_, err = storage.Upload(context.Background(), "huge.png", bytes.NewReader(pngHeader), 2<<20)
	assert.ErrorIs(t, err, ErrImageTooBig)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

const (
	DefaultMaxImageSize = 5 * 1024 * 1024
	imagePathPrefix     = "images"
)

var (
	ErrImageTooBig          = errors.New("image exceeds size limit")
	ErrInvalidImageType     = errors.New("invalid image type, only PNG, JPEG and WEBP are allowed")
	ErrImageNotFound        = errors.New("image not found")
	ErrInvalidImageKey      = errors.New("invalid image key")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload image")
	ErrDeleteFailed         = errors.New("failed to delete image")

	allowedImageTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/webp": {},
	}
)

// ImageObject is an open stored image. Callers must close Body.
type ImageObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// ImageStorage keeps recipe images under images/<uuid>-<name> keys.
type ImageStorage interface {
	Upload(ctx context.Context, filename string, file io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (*ImageObject, error)
}

// sniffImage reads the head of file and checks the real content type.
// The returned reader replays the sniffed bytes.
func sniffImage(file io.Reader) (io.Reader, string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("%w: read image head: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]
	contentType := strings.ToLower(http.DetectContentType(buf))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, "", ErrInvalidImageType
	}
	return io.MultiReader(bytes.NewReader(buf), file), contentType, nil
}

func newImageKey(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r < 0x20 || r == '/' || r == '?' || r == '#' || r == '%':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("%s/%s-%s", imagePathPrefix, uuid.NewString(), name)
}

func validImageKey(key string) bool {
	return strings.HasPrefix(key, imagePathPrefix+"/") && !strings.Contains(key, "..") && len(key) > len(imagePathPrefix)+1
}

type MinIOImageStorage struct {
	client     *minio.Client
	bucketName string
	maxSize    int64
	initOnce   sync.Once
	initErr    error
}

// NewMinIOImageStorage creates the client only. The bucket is created on
// first use so startup does not block on MinIO.
func NewMinIOImageStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, maxSize int64) (*MinIOImageStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &MinIOImageStorage{client: client, bucketName: bucketName, maxSize: maxSize}, nil
}

func (s *MinIOImageStorage) Client() *minio.Client { return s.client }

func (s *MinIOImageStorage) Bucket() string { return s.bucketName }

func (s *MinIOImageStorage) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOImageStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

func (s *MinIOImageStorage) Upload(ctx context.Context, filename string, file io.Reader, size int64) (string, error) {
	if size > s.maxSize {
		observability.RecordStorageOperation(ctx, "upload", "too_big")
		return "", ErrImageTooBig
	}
	body, contentType, err := sniffImage(file)
	if err != nil {
		observability.RecordStorageOperation(ctx, "upload", "rejected")
		return "", err
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	key := newImageKey(filename)
	_, err = s.client.PutObject(ctx, s.bucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"Original-Name": path.Base(filename),
			"Uploaded-At":   time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		observability.RecordStorageOperation(ctx, "upload", "error")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	observability.RecordStorageOperation(ctx, "upload", "success")
	return key, nil
}

// Delete removes key. Empty keys are a no-op.
func (s *MinIOImageStorage) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if !validImageKey(key) {
		return ErrInvalidImageKey
	}
	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		observability.RecordStorageOperation(ctx, "delete", "error")
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	observability.RecordStorageOperation(ctx, "delete", "success")
	return nil
}

func (s *MinIOImageStorage) Open(ctx context.Context, key string) (*ImageObject, error) {
	if !validImageKey(key) {
		return nil, ErrInvalidImageKey
	}
	if err := s.lazyInit(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		observability.RecordStorageOperation(ctx, "open", "error")
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			observability.RecordStorageOperation(ctx, "open", "not_found")
			return nil, ErrImageNotFound
		}
		observability.RecordStorageOperation(ctx, "open", "error")
		return nil, err
	}
	observability.RecordStorageOperation(ctx, "open", "success")
	return &ImageObject{Body: obj, ContentType: info.ContentType, Size: info.Size, ModTime: info.LastModified}, nil
}

type memoryImage struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// InMemoryImageStorage keeps images in process memory. Used when MinIO is
// disabled and in tests.
type InMemoryImageStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryImage
	maxSize int64
}

func NewInMemoryImageStorage(maxSize int64) *InMemoryImageStorage {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &InMemoryImageStorage{objects: make(map[string]memoryImage), maxSize: maxSize}
}

func (s *InMemoryImageStorage) Upload(ctx context.Context, filename string, file io.Reader, size int64) (string, error) {
	if size > s.maxSize {
		return "", ErrImageTooBig
	}
	body, contentType, err := sniffImage(file)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(body, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrImageTooBig
	}
	key := newImageKey(filename)
	s.mu.Lock()
	s.objects[key] = memoryImage{data: data, contentType: contentType, modTime: time.Now().UTC()}
	s.mu.Unlock()
	observability.RecordStorageOperation(ctx, "upload", "success")
	return key, nil
}

func (s *InMemoryImageStorage) Delete(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if !validImageKey(key) {
		return ErrInvalidImageKey
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryImageStorage) Open(_ context.Context, key string) (*ImageObject, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrImageNotFound
	}
	return &ImageObject{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
		ModTime:     obj.modTime,
	}, nil
}

// Has reports whether key is stored.
func (s *InMemoryImageStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

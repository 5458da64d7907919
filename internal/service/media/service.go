package media

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"golang.org/x/crypto/blake2b"

	"khrental/internal/config"
	"khrental/internal/domain"
)

// ObjectStore is the part of *minio.Client the service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Service interface {
	// Upload stores an image under maintenance/<folder>/ keyed by its content
	// hash, so sending the same file twice yields the same object and URL.
	Upload(ctx context.Context, upload domain.Upload, folder string) (*domain.StoredObject, error)
	Remove(ctx context.Context, storagePath string) error
	PublicURL(storagePath string) string
}

type service struct {
	store ObjectStore
	cfg   *config.Config
}

func NewService(store ObjectStore, cfg *config.Config) Service {
	return &service{
		store: store,
		cfg:   cfg,
	}
}

var errNoStore = errors.New("object storage is not configured")

func (s *service) Upload(ctx context.Context, upload domain.Upload, folder string) (*domain.StoredObject, error) {
	if s.store == nil {
		return nil, domain.StorageError("upload "+upload.FileName, errNoStore)
	}
	maxBytes := s.cfg.UploadMaxBytes
	if upload.Size > maxBytes {
		return nil, domain.ValidationError("%s exceeds the %d byte limit", upload.FileName, maxBytes)
	}
	if upload.Open == nil {
		return nil, domain.ValidationError("%s has no content", upload.FileName)
	}

	reader, err := upload.Open()
	if err != nil {
		return nil, domain.StorageError("open "+upload.FileName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, domain.StorageError("read "+upload.FileName, err)
	}
	if len(data) == 0 {
		return nil, domain.ValidationError("%s is empty", upload.FileName)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ValidationError("%s exceeds the %d byte limit", upload.FileName, maxBytes)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, domain.ValidationError("%s is not an image (%s)", upload.FileName, mime.String())
	}

	sum := blake2b.Sum256(data)
	storagePath := path.Join("maintenance", folder, hex.EncodeToString(sum[:])+mime.Extension())

	_, err = s.store.StatObject(ctx, s.cfg.MinIOBucket, storagePath, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return &domain.StoredObject{
			URL:         s.PublicURL(storagePath),
			StoragePath: storagePath,
			Reused:      true,
		}, nil
	case !isMissing(err):
		return nil, domain.StorageError("stat "+upload.FileName, err)
	}

	_, err = s.store.PutObject(ctx, s.cfg.MinIOBucket, storagePath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mime.String(),
		UserMetadata: map[string]string{
			"original-name": path.Base(upload.FileName),
		},
	})
	if err != nil {
		return nil, domain.StorageError("upload "+upload.FileName, err)
	}

	return &domain.StoredObject{
		URL:         s.PublicURL(storagePath),
		StoragePath: storagePath,
	}, nil
}

// isMissing reports whether a stat failed only because the key is absent.
// Any other failure leaves the object's existence unknown.
func isMissing(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (s *service) Remove(ctx context.Context, storagePath string) error {
	if s.store == nil {
		return domain.StorageError("remove "+storagePath, errNoStore)
	}
	if err := s.store.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{}); err != nil {
		return domain.StorageError("remove "+storagePath, err)
	}
	return nil
}

func (s *service) PublicURL(storagePath string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, (&url.URL{Path: storagePath}).EscapedPath())
}

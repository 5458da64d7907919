package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"khrental/internal/domain"
)

// operationFolder gives one operation its own key prefix under the request.
// Blob keys are content addressed only within it, so a rollback can never
// remove an object that another operation's committed image row points at.
func operationFolder(requestID uuid.UUID) string {
	return path.Join(requestID.String(), uuid.NewString())
}

// uploadAll stores every file or none of them. On the first failure the
// remaining uploads are cancelled and whatever already landed is removed.
func (s *service) uploadAll(ctx context.Context, uploads []domain.Upload, folder string) ([]*domain.StoredObject, error) {
	objects := make([]*domain.StoredObject, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			obj, err := s.blob.Upload(gctx, upload, folder)
			if err != nil {
				return fmt.Errorf("%s: %w", upload.FileName, err)
			}
			objects[i] = obj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.discard(ctx, objects)
		return nil, err
	}
	return objects, nil
}

type uploadResult struct {
	object *domain.StoredObject
	err    error
}

// uploadEach stores files independently; results line up with uploads.
func (s *service) uploadEach(ctx context.Context, uploads []domain.Upload, folder string) []uploadResult {
	results := make([]uploadResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			obj, err := s.blob.Upload(ctx, upload, folder)
			results[i] = uploadResult{object: obj, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// discard removes blobs written by this operation after a failure. Objects
// found already stored under the operation's prefix are left in place.
func (s *service) discard(ctx context.Context, objects []*domain.StoredObject) {
	ctx = context.WithoutCancel(ctx)
	for _, obj := range objects {
		if obj == nil || obj.Reused {
			continue
		}
		if err := s.blob.Remove(ctx, obj.StoragePath); err != nil {
			slog.Warn("failed to remove orphaned maintenance image", "path", obj.StoragePath, "error", err)
		}
	}
}

func (s *service) toImages(requestID uuid.UUID, actor domain.Actor, imageType domain.ImageType, uploads []domain.Upload, objects []*domain.StoredObject) []domain.RequestImage {
	now := s.now()
	images := make([]domain.RequestImage, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			continue
		}
		uploadedAt := now
		images = append(images, domain.RequestImage{
			ID:          uuid.New(),
			RequestID:   requestID,
			ImageURL:    obj.URL,
			ImageType:   imageType,
			UploadedBy:  actor.ID,
			Description: uploads[i].Description,
			UploadedAt:  &uploadedAt,
			StoragePath: obj.StoragePath,
		})
	}
	return images
}

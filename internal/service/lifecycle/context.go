package lifecycle

import (
	"context"

	"khrental/internal/domain"
)

type expectedVersionKey struct{}
type requestMetaKey struct{}

// WithExpectedVersion makes the next mutation fail with a conflict unless the
// stored request is still at version.
func WithExpectedVersion(ctx context.Context, version int64) context.Context {
	return context.WithValue(ctx, expectedVersionKey{}, version)
}

func ExpectedVersion(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(expectedVersionKey{}).(int64)
	return v, ok
}

// WithRequestMeta attaches caller network details that end up in audit rows.
func WithRequestMeta(ctx context.Context, meta domain.RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMeta(ctx context.Context) *domain.RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(domain.RequestMeta); ok {
		return &meta
	}
	return nil
}

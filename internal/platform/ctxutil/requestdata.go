package ctxutil

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/lendtrack-backend/internal/domain"
)

type requestDataKey struct{}

// RequestData carries the authenticated actor through a request's context.
type RequestData struct {
	UserID   uuid.UUID
	UserName string
	Role     types.UserRole
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

package ctxutil

import (
	"context"
	"strings"
)

type requestDataKey struct{}

// RequestData is the verified caller identity attached by the auth middleware.
// A nil RequestData or an empty UserID means anonymous.
type RequestData struct {
	UserID    string
	SessionID string
	Role      string
}

func (rd *RequestData) Authenticated() bool {
	return rd != nil && strings.TrimSpace(rd.UserID) != ""
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

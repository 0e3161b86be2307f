package logger

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID gắn request id vào context để log ở goroutine nền vẫn truy được request
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID trả về "" nếu ctx không mang request id
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

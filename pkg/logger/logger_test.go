package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	// WithoutCancel vẫn giữ values
	assert.Equal(t, "req-1", RequestID(context.WithoutCancel(ctx)))
}

package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestNotifierCollects(t *testing.T) {
	c := &Collector{}
	ctx := WithCollector(context.Background(), c)
	n := NewRequestNotifier(zap.NewNop())

	n.Notify(ctx, Success("Saved", ""))
	n.Notify(ctx, Error("Upload failed", "too large"))

	got := c.Drain()
	assert.Len(t, got, 2)
	assert.Equal(t, "Upload failed", got[1].Title)
	assert.Empty(t, c.Drain())
}

func TestRequestNotifierWithoutCollector(t *testing.T) {
	n := NewRequestNotifier(zap.NewNop())
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), Success("ok", ""))
	})
}

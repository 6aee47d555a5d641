// Package notify delivers transient toasts to whoever is driving the wizard.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"estuary/models"
)

// Notifier is handed to services that need to surface toasts.
type Notifier interface {
	Notify(ctx context.Context, toast models.Toast)
}

// Collector gathers the toasts raised while serving one request.
type Collector struct {
	mu     sync.Mutex
	toasts []models.Toast
}

func (c *Collector) Add(t models.Toast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(c.toasts, t)
}

// Drain returns the collected toasts and empties the collector.
func (c *Collector) Drain() []models.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.toasts
	c.toasts = nil
	return out
}

type collectorKey struct{}

func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// RequestNotifier logs every toast and adds it to the request's collector, if any.
type RequestNotifier struct {
	logger *zap.Logger
}

func NewRequestNotifier(logger *zap.Logger) *RequestNotifier {
	return &RequestNotifier{logger: logger}
}

func (n *RequestNotifier) Notify(ctx context.Context, toast models.Toast) {
	fields := []zap.Field{
		zap.String("level", string(toast.Level)),
		zap.String("title", toast.Title),
		zap.String("message", toast.Message),
	}
	if toast.Level == models.ToastError {
		n.logger.Warn("Toast", fields...)
	} else {
		n.logger.Info("Toast", fields...)
	}
	if c := CollectorFrom(ctx); c != nil {
		c.Add(toast)
	}
}

func Success(title, message string) models.Toast {
	return models.Toast{Level: models.ToastSuccess, Title: title, Message: message}
}

func Error(title, message string) models.Toast {
	return models.Toast{Level: models.ToastError, Title: title, Message: message}
}

package services

import (
	"context"
	"time"
)

// ImageStore hosts images given as data URLs and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, dataURL, folder string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// EventPublisher delivers a domain event to the message bus. key is used for
// partitioning where the bus supports it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, payload []byte) error
}

// MetricsRecorder is satisfied by *aws.MetricsClient.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

var timeNow = time.Now

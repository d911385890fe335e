package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	// HTTP metrics
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	// Business metrics
	MetricOrdersCreated        = "OrdersCreated"
	MetricOrdersFailed         = "OrdersFailed"
	MetricOrderConflictRetries = "OrderConflictRetries"
	MetricReceiptUploadFailed  = "ReceiptUploadFailed"
	MetricOrderSubmitLatency   = "OrderSubmitLatency"
	MetricSellerNotified       = "SellerNotified"
)

// PutMetricDataAPI is the part of the CloudWatch client the metrics client uses.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsClient publishes store metrics to CloudWatch. A nil or disabled
// client accepts every call and does nothing.
type MetricsClient struct {
	api       PutMetricDataAPI
	namespace string
	enabled   bool
	now       func() time.Time
}

func NewMetricsClient(cfg sdkaws.Config, namespace string, enabled bool) *MetricsClient {
	return NewMetricsClientWithAPI(cloudwatch.NewFromConfig(cfg), namespace, enabled)
}

func NewMetricsClientWithAPI(api PutMetricDataAPI, namespace string, enabled bool) *MetricsClient {
	if namespace == "" {
		namespace = "ChimesTrading"
	}
	return &MetricsClient{api: api, namespace: namespace, enabled: enabled, now: time.Now}
}

func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

// RecordCount adds one to a counter.
func (m *MetricsClient) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	return m.put(ctx, m.datum(metricName, 1, types.StandardUnitCount, dimensions))
}

// RecordLatency records d in milliseconds.
func (m *MetricsClient) RecordLatency(ctx context.Context, metricName string, d time.Duration, dimensions map[string]string) error {
	return m.put(ctx, m.datum(metricName, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions))
}

// RecordRequest publishes the request count, latency and error counters for
// one HTTP request in a single call.
func (m *MetricsClient) RecordRequest(ctx context.Context, status int, d time.Duration, dimensions map[string]string) error {
	data := []types.MetricDatum{
		m.datum(MetricHTTPRequests, 1, types.StandardUnitCount, dimensions),
		m.datum(MetricHTTPLatency, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
	}
	switch {
	case status >= 500:
		data = append(data,
			m.datum(MetricHTTPErrors, 1, types.StandardUnitCount, dimensions),
			m.datum(MetricHTTP5xx, 1, types.StandardUnitCount, dimensions))
	case status >= 400:
		data = append(data,
			m.datum(MetricHTTPErrors, 1, types.StandardUnitCount, dimensions),
			m.datum(MetricHTTP4xx, 1, types.StandardUnitCount, dimensions))
	}
	return m.put(ctx, data...)
}

func (m *MetricsClient) datum(name string, value float64, unit types.StandardUnit, dimensions map[string]string) types.MetricDatum {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dims := make([]types.Dimension, 0, len(keys))
	for _, k := range keys {
		dims = append(dims, types.Dimension{Name: sdkaws.String(k), Value: sdkaws.String(dimensions[k])})
	}
	return types.MetricDatum{
		MetricName: sdkaws.String(name),
		Value:      sdkaws.Float64(value),
		Unit:       unit,
		Timestamp:  sdkaws.Time(m.now()),
		Dimensions: dims,
	}
}

func (m *MetricsClient) put(ctx context.Context, data ...types.MetricDatum) error {
	if !m.IsEnabled() {
		return nil
	}
	_, err := m.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to put metric data: %w", err)
	}
	return nil
}

// StatusClass buckets an HTTP status code as "2xx", "3xx", "4xx" or "5xx".
func StatusClass(status int) string {
	if status < 200 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}

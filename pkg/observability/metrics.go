package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes editor operation metrics to CloudWatch.
// A nil client disables publication, which keeps handlers free of
// conditionals in development.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a metrics publisher for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordMutation records a committed document mutation by operation name
func (m *Metrics) RecordMutation(ctx context.Context, operation string, duration time.Duration) {
	if m.client == nil {
		return
	}

	now := time.Now()
	dims := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
	}

	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("MutationCommitted"),
				Dimensions: dims,
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
			},
			{
				MetricName: aws.String("MutationDuration"),
				Dimensions: dims,
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
			},
		},
	})
}

// RecordRejection records a structural rejection (no mutation happened)
func (m *Metrics) RecordRejection(ctx context.Context, operation string) {
	if m.client == nil {
		return
	}

	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("StructuralRejection"),
				Dimensions: []types.Dimension{
					{Name: aws.String("Operation"), Value: aws.String(operation)},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(1),
				Unit:      types.StandardUnitCount,
			},
		},
	})
}

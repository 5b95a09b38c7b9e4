package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides distributed tracing for document operations
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// Capture wraps a function with an X-Ray subsegment. When tracing is
// disabled the function runs directly.
func (t *Tracer) Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	return xray.Capture(ctx, fmt.Sprintf("%s.%s", t.serviceName, name), fn)
}

// AddDocumentAnnotation indexes the document id on the current segment so
// traces can be searched per document.
func (t *Tracer) AddDocumentAnnotation(ctx context.Context, documentID string) {
	if !t.enabled {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation("document_id", documentID)
	}
}

// Middleware opens an X-Ray segment per HTTP request. When tracing is
// disabled the handler chain is untouched.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	if !t.enabled {
		return next
	}
	return xray.Handler(xray.NewFixedSegmentNamer(t.serviceName), next)
}

// RecordError records an error in the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if !t.enabled || err == nil {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}

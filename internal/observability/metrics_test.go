package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/plans/:planId", "200"))
	RecordHTTPRequest("GET", "/api/v1/plans/:planId", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/plans/:planId", "200"))
	assert.Equal(t, before+1, after)

	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordPlanCreated(t *testing.T) {
	before := testutil.ToFloat64(plansCreated.WithLabelValues(SourceTemplate))
	RecordPlanCreated(SourceTemplate)
	assert.Equal(t, before+1, testutil.ToFloat64(plansCreated.WithLabelValues(SourceTemplate)))
}

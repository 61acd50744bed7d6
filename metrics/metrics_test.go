package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("oprs", "forecast", "error"))

	RecordUpstream("oprs", "forecast", errors.New("boom"), 10*time.Millisecond)

	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("oprs", "forecast", "error"))
	assert.Equal(t, before+1, after)
}

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues("keys", "hit"))

	RecordCacheLookup("keys", true)

	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookups.WithLabelValues("keys", "hit")))
}

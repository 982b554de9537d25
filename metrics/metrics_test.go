package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(inboundSubmessages.WithLabelValues("proof"))
	RecordInboundSubmessage("proof")
	RecordInboundSubmessage("proof")
	require.Equal(t, before+2, testutil.ToFloat64(inboundSubmessages.WithLabelValues("proof")))

	before = testutil.ToFloat64(inboundExecuted)
	RecordInboundExecuted()
	require.Equal(t, before+1, testutil.ToFloat64(inboundExecuted))

	before = testutil.ToFloat64(queueProcessed.WithLabelValues("outbound", "false"))
	RecordQueueProcessed("outbound", false, time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(queueProcessed.WithLabelValues("outbound", "false")))

	// registering twice is a no-op
	require.NotPanics(t, RegisterMetrics)
}

package testsupport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/testsupport"
)

func TestArtifactBuilder_BuildsGlobalResultWithCountersAndLatency(t *testing.T) {
	builder := testsupport.NewArtifactBuilder(100, 10*time.Second).
		WithCounter("upstream_rq_total", 950).
		WithCounter("benchmark.http_2xx", 940).
		WithLatencySample(1 * time.Millisecond).
		WithLatencySample(2 * time.Millisecond).
		WithLatencySample(3 * time.Millisecond)

	artifact := builder.Build()
	global, ok := artifact.GlobalResult()
	assert.True(t, ok)
	assert.Equal(t, int64(950), global.Counters["upstream_rq_total"])
	assert.Equal(t, int64(940), global.Counters["benchmark.http_2xx"])

	stat := global.Statistics["benchmark_http_client.request_to_response"]
	assert.InDelta(t, float64(2*time.Millisecond), stat.Mean, float64(50*time.Microsecond))
	assert.True(t, stat.Min <= stat.Mean)
	assert.True(t, stat.Max >= stat.Mean)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestToolCallsTotal(t *testing.T) {
	before := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_weather", "ok"))
	ToolCallsTotal.WithLabelValues("get_weather", "ok").Inc()
	after := testutil.ToFloat64(ToolCallsTotal.WithLabelValues("get_weather", "ok"))
	if after-before != 1 {
		t.Errorf("ToolCallsTotal delta = %v, want 1", after-before)
	}
}

func TestCacheLookupsTotal_Labels(t *testing.T) {
	CacheLookupsTotal.WithLabelValues("geocode", "hit").Inc()
	CacheLookupsTotal.WithLabelValues("forecast", "miss").Inc()
	if got := testutil.CollectAndCount(CacheLookupsTotal, "weatherchat_cache_lookups_total"); got < 2 {
		t.Errorf("CollectAndCount() = %d, want at least 2 series", got)
	}
}

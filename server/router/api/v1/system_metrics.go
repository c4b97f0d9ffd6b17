package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timetext/internal/observability"
)

// MetricsOverviewResponse represents the overview response of API metrics.
type MetricsOverviewResponse struct {
	InstanceID    string                                      `json:"instance_id"`
	TotalRequests int64                                       `json:"total_requests"`
	SuccessRate   float64                                     `json:"success_rate"`
	P50LatencyMs  int64                                       `json:"p50_latency_ms"`
	P95LatencyMs  int64                                       `json:"p95_latency_ms"`
	ErrorCount    int64                                       `json:"error_count"`
	Operations    map[string]*observability.OperationSnapshot `json:"operations"`
	CacheHits     uint64                                      `json:"cache_hits"`
	CacheMisses   uint64                                      `json:"cache_misses"`
}

type cacheStatser interface {
	CacheStats() (hits, misses uint64)
}

// GetMetrics returns request counters since startup.
// GET /api/v1/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	snap := s.Metrics.Snapshot()
	resp := MetricsOverviewResponse{
		InstanceID:    snap.InstanceID,
		TotalRequests: snap.RequestTotal,
		SuccessRate:   1,
		P50LatencyMs:  snap.P50LatencyMs,
		P95LatencyMs:  snap.P95LatencyMs,
		ErrorCount:    snap.RequestFailed,
		Operations:    snap.Operations,
	}
	if snap.RequestTotal > 0 {
		resp.SuccessRate = float64(snap.RequestTotal-snap.RequestFailed) / float64(snap.RequestTotal)
	}
	if cs, ok := s.Service.(cacheStatser); ok {
		resp.CacheHits, resp.CacheMisses = cs.CacheStats()
	}
	return c.JSON(http.StatusOK, resp)
}

package api

import (
	"regexp"
	"sync"
	"time"
)

// RequestTrace captures timing for a single request
type RequestTrace struct {
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	Status        int           `json:"status"`
	StartTime     time.Time     `json:"startTime"`
	TotalDuration time.Duration `json:"totalDuration"`
}

// RouteMetrics aggregates metrics for a single route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector aggregates request traces per route. Traces are queued on a
// buffered channel and processed in a background goroutine; if the channel is
// full the trace is dropped rather than blocking the request.
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
	startedAt     time.Time

	traceChan chan RequestTrace
	stopChan  chan struct{}
}

var globalMetrics *MetricsCollector

// InitMetrics initializes the global metrics collector
func InitMetrics() {
	globalMetrics = &MetricsCollector{
		routeMetrics: make(map[string]*RouteMetrics),
		startedAt:    time.Now(),
		traceChan:    make(chan RequestTrace, 1000),
		stopChan:     make(chan struct{}),
	}
	go globalMetrics.processTraces()
}

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	if globalMetrics == nil {
		InitMetrics()
	}
	return globalMetrics
}

// RecordTrace queues a trace for aggregation. Never blocks; a full queue drops
// the trace.
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	select {
	case mc.traceChan <- trace:
	default:
	}
}

func (mc *MetricsCollector) processTraces() {
	for {
		select {
		case trace := <-mc.traceChan:
			mc.processTrace(trace)
		case <-mc.stopChan:
			return
		}
	}
}

var objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// normalizeRoutePath collapses document ids so metrics group by route, e.g.
// /api/v1/case/507f1f77bcf86cd799439011 -> /api/v1/case/{id}
func normalizeRoutePath(path string) string {
	return objectIDPattern.ReplaceAllString(path, "/{id}$1")
}

func (mc *MetricsCollector) processTrace(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	routeKey := trace.Method + " " + normalizeRoutePath(trace.Path)
	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  trace.Method,
			Path:    normalizeRoutePath(trace.Path),
			MinTime: trace.TotalDuration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += trace.TotalDuration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = trace.StartTime
	if trace.TotalDuration < metrics.MinTime {
		metrics.MinTime = trace.TotalDuration
	}
	if trace.TotalDuration > metrics.MaxTime {
		metrics.MaxTime = trace.TotalDuration
	}

	mc.totalRequests++
	if trace.Status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
}

// GetRouteMetrics returns a copy of the aggregated per-route metrics
func (mc *MetricsCollector) GetRouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics, len(mc.routeMetrics))
	for k, v := range mc.routeMetrics {
		metrics := *v
		result[k] = &metrics
	}
	return result
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"routeCount":    len(mc.routeMetrics),
		"uptime":        time.Since(mc.startedAt).String(),
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classroom-insight-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, func(context.Context) error { return nil })
	c, rec := newContext("/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	handler = NewMetricsHandler(nil, func(context.Context) error { return errors.New("store down") })
	c, rec = newContext("/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "store down")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveCollectionFetch("grades", false, 0)
	handler := NewMetricsHandler(metrics, nil)

	c, rec := newContext("/metrics", nil)
	handler.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `collection_fetch_failures_total{collection="grades"} 1`)

	handler = NewMetricsHandler(nil, nil)
	c, rec = newContext("/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package prom

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
	"github.com/bargir/dispatch-gateway/pkg/logger"
)

const (
	SystemDispatch = "dispatch"
)

const (
	MetricLogins            = "logins_total"
	MetricAssignments       = "assignments_total"
	MetricStatusTransitions = "status_transitions_total"
	MetricMessagesSent      = "messages_sent_total"
	MetricEventsConsumed    = "events_consumed_total"
	MetricCommandDuration   = "command_duration_seconds"
)

var createLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var counterVecs = make(map[string]*prometheus.CounterVec)
var histogramVecs = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers the dispatch metric family. host/env become constant
// labels on every series.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemDispatch, MetricLogins, []string{"result"}))
	hasError(createCounterVec(SystemDispatch, MetricAssignments, []string{"result"}))
	hasError(createCounterVec(SystemDispatch, MetricStatusTransitions, []string{"status"}))
	hasError(createCounterVec(SystemDispatch, MetricMessagesSent, []string{"type"}))
	hasError(createCounterVec(SystemDispatch, MetricEventsConsumed, []string{"kind"}))
	hasError(createHistogramVec(SystemDispatch, MetricCommandDuration, []string{"command"}))

	return err
}

func createCounterVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()

	key := subsystem + "_" + name
	if _, ok := counterVecs[key]; ok {
		return fmt.Errorf("metric %s is already registered", key)
	}
	v := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	if err := prometheus.Register(v); err != nil {
		return err
	}
	counterVecs[key] = v
	return nil
}

func createHistogramVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()

	key := subsystem + "_" + name
	if _, ok := histogramVecs[key]; ok {
		return fmt.Errorf("metric %s is already registered", key)
	}
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	if err := prometheus.Register(v); err != nil {
		return err
	}
	histogramVecs[key] = v
	return nil
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counterVecs[subsystem+"_"+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
	}
}

func ObserveHistogramVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := histogramVecs[subsystem+"_"+name]; ok {
		v.WithLabelValues(labelValues...).Observe(value)
	}
}

// ListenAndServer exposes /metrics on a side port, away from the API
// listener.
func ListenAndServer(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	if url == "" {
		url = "/metrics"
	}
	s.Router.GET(url, hh)
	go func() {
		if err := s.ListenAndServe(addr); err != nil {
			logger.Error("[prom] metrics server stopped", "error", err)
		}
	}()
}

package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	xhttp "github.com/kaiteddy/garage-comms/pkg/http"
	"github.com/kaiteddy/garage-comms/pkg/logger"
)

const (
	SystemDispatch = "dispatch"
)

const (
	MetricDispatchAttempts = "attempts_total"
	MetricDispatchDuration = "duration_seconds"
	MetricDispatchCost     = "cost_total"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

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

	hasError(createCounterVec(SystemDispatch, MetricDispatchAttempts, []string{"channel", "status"}))
	hasError(createCounterVec(SystemDispatch, MetricDispatchCost, []string{"channel"}))
	hasError(createHistogramVec(SystemDispatch, MetricDispatchDuration, []string{"message_type"}))

	return err
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

// AddDispatchAttempt counts one channel attempt by outcome.
func AddDispatchAttempt(channel, status string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := MetricCollectionCounterVec[SystemDispatch+MetricDispatchAttempts]; ok {
		m.WithLabelValues(channel, status).Inc()
	}
}

// AddDispatchCost accumulates provider cost per channel.
func AddDispatchCost(cost float64, channel string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := MetricCollectionCounterVec[SystemDispatch+MetricDispatchCost]; ok {
		m.WithLabelValues(channel).Add(cost)
	}
}

// ObserveDispatchDuration records the wall-clock time of one dispatch.
func ObserveDispatchDuration(seconds float64, messageType string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := MetricCollectionHistogramVec[SystemDispatch+MetricDispatchDuration]; ok {
		m.WithLabelValues(messageType).Observe(seconds)
	}
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

/*
	OFH Core - Open Fronthaul lower-layer stack
	Copyright (C) 2026  srsOSS Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const serveMetricsShutdownTimeout = 2 * time.Second

var (
	descRxDropped = prometheus.NewDesc("ofh_du_rx_dropped_total",
		"Frames dropped at the receiver boundary, by cause.", []string{"cause"}, nil)
	descWindow = prometheus.NewDesc("ofh_du_window_messages_total",
		"Messages classified by reception-window timing.", []string{"classification"}, nil)
	descForceDelivered = prometheus.NewDesc("ofh_du_force_delivered_total",
		"Grid symbols or PRACH occasions force-delivered after their reception window closed.", []string{"kind"}, nil)
	descDataFlowDropped = prometheus.NewDesc("ofh_du_dataflow_dropped_total",
		"Messages dropped by a data flow's validation against the installed scheduling context.", []string{"flow"}, nil)
	descCompletions = prometheus.NewDesc("ofh_du_completions_total",
		"Completed uplink deliveries, by kind.", []string{"kind"}, nil)
)

// duCollector bridges duPipeline's delta-since-last-call and
// lifetime-counter metrics into Prometheus counters. Window-checker and
// closer-handler metrics reset on every CollectMetrics call, so this
// collector accumulates them into running totals; the receiver and data
// flow metrics are already lifetime counters and are exposed as-is.
type duCollector struct {
	p *duPipeline

	mu                   sync.Mutex
	onTimeTotal          uint64
	earlyTotal           uint64
	lateTotal            uint64
	missingSymbolsTotal  uint64
	missingPrachTotal    uint64
}

func newDuCollector(p *duPipeline) *duCollector {
	return &duCollector{p: p}
}

func (c *duCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- descRxDropped
	descs <- descWindow
	descs <- descForceDelivered
	descs <- descDataFlowDropped
	descs <- descCompletions
}

func (c *duCollector) Collect(metrics chan<- prometheus.Metric) {
	rx := c.p.recv.CollectMetrics()
	win := c.p.windowCheck.CollectMetrics()
	closerM := c.p.closerH.CollectMetrics()
	dataM := c.p.dataFlow.CollectMetrics()
	prachM := c.p.prachFlow.CollectMetrics()
	uplinkSymbols, incompleteGrants, prachOccasions := c.p.notifier.CollectMetrics()

	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.MalformedFrame), "malformed_frame")
	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.UnsupportedEcpri), "unsupported_ecpri")
	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.UnknownEcpriType), "unknown_ecpri_type")
	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.UnconfiguredEaxc), "unconfigured_eaxc")
	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.SeqIdFromPast), "seq_id_from_past")
	metrics <- prometheus.MustNewConstMetric(descRxDropped, prometheus.CounterValue, float64(rx.PeekFailure), "peek_failure")

	c.mu.Lock()
	c.onTimeTotal += win.NofOnTimeMessages
	c.earlyTotal += win.NofEarlyMessages
	c.lateTotal += win.NofLateMessages
	c.missingSymbolsTotal += uint64(closerM.NofMissingUplinkSymbols)
	c.missingPrachTotal += uint64(closerM.NofMissingPrachContexts)
	onTime, early, late := c.onTimeTotal, c.earlyTotal, c.lateTotal
	missingSymbols, missingPrach := c.missingSymbolsTotal, c.missingPrachTotal
	c.mu.Unlock()

	metrics <- prometheus.MustNewConstMetric(descWindow, prometheus.CounterValue, float64(onTime), "on_time")
	metrics <- prometheus.MustNewConstMetric(descWindow, prometheus.CounterValue, float64(early), "early")
	metrics <- prometheus.MustNewConstMetric(descWindow, prometheus.CounterValue, float64(late), "late")

	metrics <- prometheus.MustNewConstMetric(descForceDelivered, prometheus.CounterValue, float64(missingSymbols), "uplink_symbol")
	metrics <- prometheus.MustNewConstMetric(descForceDelivered, prometheus.CounterValue, float64(missingPrach), "prach_context")

	metrics <- prometheus.MustNewConstMetric(descDataFlowDropped, prometheus.CounterValue, float64(dataM.DroppedMessages), "uplink")
	metrics <- prometheus.MustNewConstMetric(descDataFlowDropped, prometheus.CounterValue, float64(prachM.DroppedMessages), "prach")

	metrics <- prometheus.MustNewConstMetric(descCompletions, prometheus.CounterValue, float64(uplinkSymbols), "uplink_symbol")
	metrics <- prometheus.MustNewConstMetric(descCompletions, prometheus.CounterValue, float64(incompleteGrants), "incomplete_grant")
	metrics <- prometheus.MustNewConstMetric(descCompletions, prometheus.CounterValue, float64(prachOccasions), "prach_occasion")
}

var _ prometheus.Collector = (*duCollector)(nil)

// serveMetrics registers collector on its own Prometheus registry and
// starts an HTTP server on addr, returning a function that shuts it down.
func serveMetrics(addr string, log *logrus.Entry, collector prometheus.Collector) func() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), serveMetricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("metrics server shutdown failed")
		}
	}
}

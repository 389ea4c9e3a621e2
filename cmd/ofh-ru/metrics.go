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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const serveMetricsShutdownTimeout = 2 * time.Second

var descReflector = prometheus.NewDesc("ofh_ru_packets_total",
	"Reflector packet counters, by kind.", []string{"kind"}, nil)

// ruCollector bridges ruemu.Emulator.CollectMetrics into Prometheus.
// Unlike cmd/ofh-du's bridge, every counter here is already a lifetime
// total, so no running-total accumulation is needed.
type ruCollector struct {
	p *ruPipeline
}

func newRuCollector(p *ruPipeline) *ruCollector {
	return &ruCollector{p: p}
}

func (c *ruCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- descReflector
}

func (c *ruCollector) Collect(metrics chan<- prometheus.Metric) {
	m := c.p.emu.CollectMetrics()
	metrics <- prometheus.MustNewConstMetric(descReflector, prometheus.CounterValue, float64(m.RxTotal), "received")
	metrics <- prometheus.MustNewConstMetric(descReflector, prometheus.CounterValue, float64(m.TxTotal), "transmitted")
	metrics <- prometheus.MustNewConstMetric(descReflector, prometheus.CounterValue, float64(m.Corrupt), "corrupt")
	metrics <- prometheus.MustNewConstMetric(descReflector, prometheus.CounterValue, float64(m.Dropped), "dropped")
}

var _ prometheus.Collector = (*ruCollector)(nil)

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

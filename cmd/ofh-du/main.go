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

// Command ofh-du runs the DU-side Open Fronthaul reception pipeline: it
// receives uplink User-Plane traffic from an RU (or RU emulator) over a
// raw Ethernet interface, validates it against a locally installed
// scheduling context, and periodically logs reception statistics. It
// also drives a minimal demonstration scheduler that installs a
// recurring full-bandwidth grant and issues the matching Control-Plane
// messages, since this repository carries no MAC/scheduler component of
// its own to source real grants from.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srsoss/ofh-core/pkg/config"
)

var (
	flagConfigPath     string
	flagIface          string
	flagMetricsAddr    string
	flagReportInterval string
	flagLogLevel       string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofh-du",
		Short: "Open Fronthaul DU-side reception pipeline",
		RunE:  runDu,
	}
	cmd.Flags().StringVar(&flagConfigPath, "config", "", "path to the YAML configuration file (required)")
	cmd.Flags().StringVar(&flagIface, "iface", "", "Ethernet interface to receive on and send Control-Plane grants from (required)")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9100", "address to expose Prometheus metrics on")
	cmd.Flags().StringVar(&flagReportInterval, "report-interval", "10s", "interval between logged statistics snapshots")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "logrus level: trace, debug, info, warn, error")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("iface")
	return cmd
}

func newLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing --log-level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

func runDu(cmd *cobra.Command, args []string) error {
	log, err := newLogger(flagLogLevel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	p, err := newDuPipeline(cfg, flagIface, log)
	if err != nil {
		return fmt.Errorf("ofh-du: building pipeline: %w", err)
	}

	return p.run(flagReportInterval, flagMetricsAddr)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

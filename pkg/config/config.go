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

// Package config holds the YAML-loadable configuration recognized by the
// ofh-du and ofh-ru binaries. Nothing under pkg/ (other than cmd/ itself)
// depends on this package: every core component takes an
// already-validated Go struct.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

// Sentinel validation errors, one per recognized field group.
var (
	ErrMissingVlan            = errors.New("config: vlan block is required")
	ErrInvalidMac             = errors.New("config: invalid MAC address")
	ErrTooManyEaxc            = errors.New("config: eaxc list exceeds the maximum supported entries")
	ErrInvalidEaxc            = errors.New("config: eaxc value out of range")
	ErrInvalidCompressionKind = errors.New("config: unrecognized compression kind")
	ErrInvalidRxWindow        = errors.New("config: rx_window min must not exceed max")
	ErrInvalidWarnPolicy      = errors.New("config: unrecognized warn_unreceived_ru_frames policy")
	ErrInvalidPrachFormat     = errors.New("config: unrecognized prach_format")
	ErrInvalidScs             = errors.New("config: unrecognized subcarrier spacing")
	ErrInvalidBandwidth       = errors.New("config: cell_bandwidth_MHz must be positive")
	ErrInvalidExtendedCp      = errors.New("config: extended_cp is only valid at 60 kHz subcarrier spacing")
)

// VlanConfig is the Ethernet/802.1Q filter applied to received frames.
type VlanConfig struct {
	SrcMac    string  `yaml:"src_mac"`
	DstMac    string  `yaml:"dst_mac"`
	TCI       *uint16 `yaml:"tci,omitempty"`
	EtherType uint16  `yaml:"ethertype"`
}

func (v VlanConfig) validate() error {
	if v.SrcMac == "" || v.DstMac == "" {
		return ErrMissingVlan
	}
	if !isValidMacString(v.SrcMac) || !isValidMacString(v.DstMac) {
		return ErrInvalidMac
	}
	return nil
}

func isValidMacString(s string) bool {
	if len(s) != 17 {
		return false
	}
	for i, c := range s {
		if i%3 == 2 {
			if c != ':' {
				return false
			}
			continue
		}
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// EaxcConfig lists the configured eAxC values per direction.
type EaxcConfig struct {
	DL    []uint8 `yaml:"dl,omitempty"`
	UL    []uint8 `yaml:"ul,omitempty"`
	Prach []uint8 `yaml:"prach,omitempty"`
}

const (
	maxNofSupportedEaxc    = 4
	maxSupportedEaxcIDValue = 32
)

func validateEaxcList(list []uint8) error {
	if len(list) > maxNofSupportedEaxc {
		return ErrTooManyEaxc
	}
	for _, v := range list {
		if int(v) >= maxSupportedEaxcIDValue {
			return ErrInvalidEaxc
		}
	}
	return nil
}

func (e EaxcConfig) validate() error {
	for _, list := range [][]uint8{e.DL, e.UL, e.Prach} {
		if err := validateEaxcList(list); err != nil {
			return err
		}
	}
	return nil
}

// CompressionConfig describes one direction's IQ compression scheme. The
// core consumes a decompressor contract (pkg/wire.IqDecompressor); the
// codec implementation behind kind is pluggable and out of scope here.
type CompressionConfig struct {
	Kind  string `yaml:"kind"`
	Width uint8  `yaml:"width"`
}

var validCompressionKinds = map[string]bool{
	"none": true, "bfp": true, "block_scaling": true, "mu_law": true, "modulation": true,
}

func (c CompressionConfig) validate() error {
	if c.Kind == "" {
		return nil
	}
	if !validCompressionKinds[c.Kind] {
		return ErrInvalidCompressionKind
	}
	return nil
}

// RxWindowConfig is the reception window's timing boundary, in
// microseconds relative to the OTA symbol.
type RxWindowConfig struct {
	Ta4MinUs int `yaml:"Ta4_min_us"`
	Ta4MaxUs int `yaml:"Ta4_max_us"`
}

func (r RxWindowConfig) validate() error {
	if r.Ta4MinUs > r.Ta4MaxUs {
		return ErrInvalidRxWindow
	}
	return nil
}

// WarnUnreceivedPolicy selects how aggressively the closed-window handler
// logs force-delivered, incomplete symbols.
type WarnUnreceivedPolicy string

const (
	WarnNever               WarnUnreceivedPolicy = "never"
	WarnAlways              WarnUnreceivedPolicy = "always"
	WarnAfterTrafficDetected WarnUnreceivedPolicy = "after_traffic_detection"
)

func (p WarnUnreceivedPolicy) validate() error {
	switch p {
	case "", WarnNever, WarnAlways, WarnAfterTrafficDetected:
		return nil
	default:
		return ErrInvalidWarnPolicy
	}
}

// PrachFormat selects the RU emulator's canned PRACH response shape.
type PrachFormat string

const (
	PrachFormatLong0    PrachFormat = "long_format0"
	PrachFormatShortB4  PrachFormat = "short_formatB4"
)

func (f PrachFormat) validate() error {
	switch f {
	case "", PrachFormatLong0, PrachFormatShortB4:
		return nil
	default:
		return ErrInvalidPrachFormat
	}
}

var validScsKHz = map[int]bool{15: true, 30: true, 60: true, 120: true}

// Config is the top-level recognized configuration for both ofh-du and
// ofh-ru; fields not relevant to a given binary are simply left zero.
type Config struct {
	Vlan  VlanConfig `yaml:"vlan"`
	Eaxc  EaxcConfig `yaml:"eaxc"`

	CompressionUL    CompressionConfig `yaml:"compression_ul"`
	CompressionDL    CompressionConfig `yaml:"compression_dl"`
	CompressionPrach CompressionConfig `yaml:"compression_prach"`

	RxWindow   RxWindowConfig `yaml:"rx_window"`
	RxWindowDL RxWindowConfig `yaml:"rx_window_dl"`

	IgnoreEcpriPayloadSize bool `yaml:"ignore_ecpri_payload_size"`
	IgnoreEcpriSeqId       bool `yaml:"ignore_ecpri_seq_id"`
	IsPrachCplaneEnabled   bool `yaml:"is_prach_cplane_enabled"`
	IgnorePrachStartSymbol bool `yaml:"ignore_prach_start_symbol"`
	EnableLogWarningsForLates bool `yaml:"enable_log_warnings_for_lates"`

	WarnUnreceivedRuFrames WarnUnreceivedPolicy `yaml:"warn_unreceived_ru_frames"`
	PrachFormat            PrachFormat          `yaml:"prach_format"`

	CellBandwidthMHz int  `yaml:"cell_bandwidth_MHz"`
	ScsKHz           int  `yaml:"scs"`
	ExtendedCp       bool `yaml:"extended_cp"`
}

// Numerology returns the 3GPP numerology index (mu) implied by ScsKHz.
// Validate must have already confirmed ScsKHz is one of the supported
// values, so any other value here is a programmer error, not user input.
func (c *Config) Numerology() uint8 {
	switch c.ScsKHz {
	case 15:
		return 0
	case 30:
		return 1
	case 60:
		return 2
	case 120:
		return 3
	default:
		panic(fmt.Sprintf("config: unvalidated scs %d", c.ScsKHz))
	}
}

// CyclicPrefix returns the ofhtypes.CyclicPrefix ExtendedCp selects.
func (c *Config) CyclicPrefix() ofhtypes.CyclicPrefix {
	if c.ExtendedCp {
		return ofhtypes.CyclicPrefixExtended
	}
	return ofhtypes.CyclicPrefixNormal
}

// Validate checks every recognized field, stopping at the first failure,
// mirroring the teacher's one-check-per-field, first-failure-wins shape.
func (c *Config) Validate() error {
	if err := c.Vlan.validate(); err != nil {
		return err
	}
	if err := c.Eaxc.validate(); err != nil {
		return err
	}
	if err := c.CompressionUL.validate(); err != nil {
		return err
	}
	if err := c.CompressionDL.validate(); err != nil {
		return err
	}
	if err := c.CompressionPrach.validate(); err != nil {
		return err
	}
	if err := c.RxWindow.validate(); err != nil {
		return err
	}
	if err := c.RxWindowDL.validate(); err != nil {
		return err
	}
	if err := c.WarnUnreceivedRuFrames.validate(); err != nil {
		return err
	}
	if err := c.PrachFormat.validate(); err != nil {
		return err
	}
	if c.CellBandwidthMHz <= 0 {
		return ErrInvalidBandwidth
	}
	if !validScsKHz[c.ScsKHz] {
		return ErrInvalidScs
	}
	if c.ExtendedCp && c.ScsKHz != 60 {
		return ErrInvalidExtendedCp
	}
	return nil
}

// Load reads and validates a Config from a YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

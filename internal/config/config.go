// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package config decodes profsink's TOML config file and layers CLI
// flag overrides on top of it, the way cmd/erigon's config loader
// layers --config file values under explicit flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pbnjay/memory"
	"github.com/pelletier/go-toml/v2"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/symbolizer"
)

// Config is profsink's full runtime configuration. Every field has a
// zero value meaning "use the default computed in Default()".
type Config struct {
	DataDir       string `toml:"datadir"`
	ListenGRPC    string `toml:"listen_grpc"`
	MetricsAddr   string `toml:"metrics_addr"`
	SymbolizerURL string `toml:"symbolizer_url"`
	LogLevel      string `toml:"log_level"`

	SymbMaxPar    int           `toml:"symb_max_par"`
	SymbFreq      time.Duration `toml:"symb_freq"`
	SymbRetryFreq time.Duration `toml:"symb_retry_freq"`

	// CacheEntries overrides dbstore.Tables' per-table CacheEntries by
	// table name (spec.md §4.1.3). A table not listed here keeps its
	// schema default.
	CacheEntries map[string]uint32 `toml:"cache_entries"`
}

// Default values, grounded on the constants already declared next to
// the code they configure (dbstore.Tables, symbolizer.DefaultMaxPar,
// DefaultDiscoveryFreq, DefaultRetryFreq) rather than redeclared here.
const (
	DefaultListenGRPC    = "127.0.0.1:9090"
	DefaultMetricsAddr   = "127.0.0.1:9091"
	DefaultSymbolizerURL = "http://127.0.0.1:9190"
	DefaultLogLevel      = "info"
)

// Default returns a Config with every field set to its baseline
// value, before any TOML file or CLI flag is applied.
func Default() *Config {
	return &Config{
		DataDir:       "profsink-data",
		ListenGRPC:    DefaultListenGRPC,
		MetricsAddr:   DefaultMetricsAddr,
		SymbolizerURL: DefaultSymbolizerURL,
		LogLevel:      DefaultLogLevel,
		SymbMaxPar:    symbolizer.DefaultMaxPar,
		SymbFreq:      symbolizer.DefaultDiscoveryFreq,
		SymbRetryFreq: symbolizer.DefaultRetryFreq,
	}
}

// Load reads and decodes the TOML file at path over Default(), so an
// absent or partial file still yields a fully populated Config.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// TableCfg returns dbstore.Tables with any CacheEntries overrides from
// cfg applied, and -- for tables left unconfigured -- entry counts
// scaled off available system memory the way Erigon sizes its own
// unconfigured mdbx caches, instead of hard-coding one number for every
// machine.
func (c *Config) TableCfg() dbstore.TableCfg {
	out := make(dbstore.TableCfg, len(dbstore.Tables))
	budget := cacheBudgetEntries()
	for name, item := range dbstore.Tables {
		if n, ok := c.CacheEntries[name]; ok {
			item.CacheEntries = n
		} else if item.CacheEntries > 0 {
			item.CacheEntries = scaleByMemory(item.CacheEntries, budget)
		}
		out[name] = item
	}
	return out
}

// cacheBudgetEntries expresses available system RAM as a multiplier
// against the schema's baseline cache sizes: systems with less than
// 4 GiB free shrink caches, systems with more grow them, capped to
// avoid unbounded growth on very large hosts.
func cacheBudgetEntries() float64 {
	const baselineBytes = 4 << 30
	free := memory.FreeMemory()
	if free == 0 {
		return 1.0
	}
	scale := float64(free) / float64(baselineBytes)
	if scale < 0.25 {
		scale = 0.25
	}
	if scale > 4.0 {
		scale = 4.0
	}
	return scale
}

func scaleByMemory(base uint32, scale float64) uint32 {
	scaled := float64(base) * scale
	if scaled < 1 {
		return 1
	}
	return uint32(scaled)
}

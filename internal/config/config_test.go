package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesTOMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profsink.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
datadir = "/var/lib/profsink"
listen_grpc = "0.0.0.0:9090"
symb_max_par = 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/profsink", cfg.DataDir)
	require.Equal(t, "0.0.0.0:9090", cfg.ListenGRPC)
	require.Equal(t, 4, cfg.SymbMaxPar)
	require.Equal(t, DefaultSymbolizerURL, cfg.SymbolizerURL, "unset fields keep their default")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestTableCfgHonorsExplicitOverride(t *testing.T) {
	cfg := Default()
	cfg.CacheEntries = map[string]uint32{"stack_traces": 42}

	tc := cfg.TableCfg()
	require.Equal(t, uint32(42), tc["stack_traces"].CacheEntries)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya/property-etl/internal/config"
)

func TestLoadMergedConfig_DefaultsOnly(t *testing.T) {
	runConfigPath = ""

	cfg, err := loadMergedConfig(runCommand)
	require.NoError(t, err)

	assert.Equal(t, "sale", cfg.AdsType)
	assert.Equal(t, "house", cfg.PropertyType)
	assert.Equal(t, 10, cfg.NumPages)
	assert.Equal(t, "listings_staging", cfg.StagingTable)
	assert.Equal(t, 500, cfg.BatchSize)
}

func TestLoadMergedConfig_FlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ads_type": "rent", "num_pages": 3}`), 0o644))
	runConfigPath = path
	t.Cleanup(func() { runConfigPath = "" })

	require.NoError(t, runCommand.Flags().Set("num-pages", "7"))
	t.Cleanup(func() { _ = runCommand.Flags().Set("num-pages", "0") })

	cfg, err := loadMergedConfig(runCommand)
	require.NoError(t, err)

	// File value survives where no flag was given, flag wins where it was.
	assert.Equal(t, "rent", cfg.AdsType)
	assert.Equal(t, 7, cfg.NumPages)
}

func TestLoadMergedConfig_InvalidFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ads_type": "lease"}`), 0o644))
	runConfigPath = path
	t.Cleanup(func() { runConfigPath = "" })

	_, err := loadMergedConfig(runCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'ads_type' must be one of [sale rent]")
}

func TestFindRegion(t *testing.T) {
	cfg := config.Config{Regions: []config.Region{
		{Name: "jakarta", ID: "dki-jakarta", AdminAreas: []string{"Jakarta Selatan"}},
	}}

	region, err := findRegion(cfg, "jakarta")
	require.NoError(t, err)
	assert.Equal(t, "dki-jakarta", region.ID)

	_, err = findRegion(cfg, "bandung")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `region "bandung" not found`)
}

func TestFindRegion_NoConfiguredRegions(t *testing.T) {
	region, err := findRegion(config.Config{}, "surabaya")
	require.NoError(t, err)
	assert.Equal(t, "surabaya", region.Name)
	assert.Equal(t, "surabaya", region.ID)
}

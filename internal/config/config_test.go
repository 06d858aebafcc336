package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"ads_type": "rent",
		"property_type": "apartment",
		"num_pages": 25,
		"regions": [
			{"name": "jakarta", "id": "dki-jakarta", "admins": ["Jakarta Selatan", "Jakarta Timur"]}
		],
		"stg_table": "listings_staging",
		"main_table": "listings",
		"unique_key": "link",
		"batch_size": 250
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "rent", cfg.AdsType)
	assert.Equal(t, "apartment", cfg.PropertyType)
	assert.Equal(t, 25, cfg.NumPages)
	require.Len(t, cfg.Regions, 1)
	assert.Equal(t, "dki-jakarta", cfg.Regions[0].ID)
	assert.Equal(t, []string{"Jakarta Selatan", "Jakarta Timur"}, cfg.Regions[0].AdminAreas)
	assert.Equal(t, 250, cfg.BatchSize)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"ads_typo": "sale"}`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestLoadConfig_RejectsWrongTypes(t *testing.T) {
	path := writeConfig(t, `{"num_pages": "ten"}`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_pages")
}

func TestLoadConfig_RejectsRegionWithoutID(t *testing.T) {
	path := writeConfig(t, `{"regions": [{"name": "jakarta"}]}`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty config is fine", Config{}, ""},
		{"defaults are fine", Defaults(), ""},
		{"bad ads type", Config{AdsType: "lease"}, "'ads_type' must be one of [sale rent]"},
		{"bad property type", Config{PropertyType: "castle"}, "'property_type' must be one of"},
		{"negative num pages", Config{NumPages: -3}, "'num_pages' must be a positive integer"},
		{"negative batch size", Config{BatchSize: -1}, "'batch_size' must be a positive integer"},
		{"bad base url", Config{BaseURL: "not a url"}, "'base_url' must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{AdsType: "rent", NumPages: 3}
	merged := cfg.MergeWithDefaults(Defaults())

	// Explicit values survive the merge.
	assert.Equal(t, "rent", merged.AdsType)
	assert.Equal(t, 3, merged.NumPages)

	// Zero values are filled in.
	assert.Equal(t, "house", merged.PropertyType)
	assert.Equal(t, "https://www.rumah123.com", merged.BaseURL)
	assert.Equal(t, "listings_staging", merged.StagingTable)
	assert.Equal(t, "listings", merged.MainTable)
	assert.Equal(t, "link", merged.UniqueKey)
	assert.Equal(t, 500, merged.BatchSize)
	assert.Equal(t, "./data/raw", merged.RawDir)
	assert.Equal(t, "./data/processed", merged.ProcessedDir)
}

func TestMergeWithDefaults_RegionsFilledWhenEmpty(t *testing.T) {
	defaults := Defaults()
	defaults.Regions = []Region{{Name: "jakarta", ID: "dki-jakarta"}}

	merged := (&Config{}).MergeWithDefaults(defaults)
	require.Len(t, merged.Regions, 1)
	assert.Equal(t, "dki-jakarta", merged.Regions[0].ID)

	own := Config{Regions: []Region{{Name: "bogor", ID: "bogor"}}}
	merged = own.MergeWithDefaults(defaults)
	require.Len(t, merged.Regions, 1)
	assert.Equal(t, "bogor", merged.Regions[0].ID)
}

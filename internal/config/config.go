// Package config loads the ambient configuration for the ADR core and its
// command-line drivers (§SPEC_FULL.md 1.3): SQL DSN, snapshot path, ECAC
// bounding box, DCT pipeline worker count, cutoff windows, the terrain/AUP
// collaborator endpoints, cache TTL, and logging.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/vfrnav/adr/pkg/geo"
)

// Config is the process-wide configuration, populated from defaults, then
// a YAML file, then ADR_*-prefixed environment variables (later sources
// override earlier ones, viper's usual precedence).
type Config struct {
	SQLDSN       string        `mapstructure:"sql_dsn"`
	SnapshotPath string        `mapstructure:"snapshot_path"`
	ECACBBox     geo.Rect      `mapstructure:"-"`
	Workers      int           `mapstructure:"workers"`
	Cutoff       time.Duration `mapstructure:"cutoff"`
	FutureCutoff time.Duration `mapstructure:"future_cutoff"`
	TerrainURL   string        `mapstructure:"terrain_url"`
	AUPURL       string        `mapstructure:"aup_url"`
	CacheSize    int           `mapstructure:"cache_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	LogLevel     string        `mapstructure:"log_level"`
	LogDir       string        `mapstructure:"log_dir"`
}

// defaultECACBBox is the ECAC region's approximate bounding box (§4.3.1
// candidate-set selection), in geo's fixed-point integer units (2^31 per
// 180 degrees).
var defaultECACBBox = geo.Rect{
	SWLat: geo.ToFixed(25), SWLon: geo.ToFixed(-30),
	NELat: geo.ToFixed(72), NELon: geo.ToFixed(45),
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sql_dsn", "adr.sqlite3")
	v.SetDefault("snapshot_path", "adr.snapshot")
	v.SetDefault("workers", 4)
	v.SetDefault("cutoff", "-1h")
	v.SetDefault("future_cutoff", "4320h") // 180 days
	v.SetDefault("terrain_url", "")
	v.SetDefault("aup_url", "")
	v.SetDefault("cache_size", 4096)
	v.SetDefault("cache_ttl", "30m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
}

// Load builds a Config from defaults, an optional configPath YAML file
// (skipped silently if empty or not found), and ADR_*-prefixed environment
// variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ADR")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	c.ECACBBox = defaultECACBBox
	if v.IsSet("ecac_bbox") {
		bbox := v.GetStringMapString("ecac_bbox")
		if r, err := parseBBox(bbox); err == nil {
			c.ECACBBox = r
		}
	}
	return &c, nil
}

func parseBBox(m map[string]string) (geo.Rect, error) {
	get := func(k string) (float64, error) {
		var f float64
		_, err := fmt.Sscanf(m[k], "%g", &f)
		return f, err
	}
	swlat, err := get("swlat")
	if err != nil {
		return geo.Rect{}, err
	}
	swlon, err := get("swlon")
	if err != nil {
		return geo.Rect{}, err
	}
	nelat, err := get("nelat")
	if err != nil {
		return geo.Rect{}, err
	}
	nelon, err := get("nelon")
	if err != nil {
		return geo.Rect{}, err
	}
	return geo.Rect{
		SWLat: geo.ToFixed(swlat), SWLon: geo.ToFixed(swlon),
		NELat: geo.ToFixed(nelat), NELon: geo.ToFixed(nelon),
	}, nil
}

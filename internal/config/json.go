package config

import (
	"encoding/json"
	"os"
	"time"

	"securenotes/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given as strings understood by time.ParseDuration ("2s", "500ms"). Empty
// fields leave the current Config value untouched.
type JsonConfig struct {
	DataDir          string `json:"data_dir"`
	AutoSaveInterval string `json:"auto_save_interval"`
	LogLevel         string `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. If no file is given the function returns without
// touching cfg. Read or parse errors panic; the config file is operator
// input and a broken one should stop startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.AutoSaveInterval != "" {
		d, err := time.ParseDuration(jc.AutoSaveInterval)
		if err != nil {
			panic(err)
		}
		cfg.AutoSaveInterval = d
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}

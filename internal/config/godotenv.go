package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envPrefix marks the process environment variables that belong to this
// application and may override file-based settings.
const envPrefix = "VEILFS_"

// GodotenvProvider reads env-style key=value files through the godotenv
// framework and overlays matching process environment variables on top.
type GodotenvProvider struct{}

// Read parses the given files into one merged map. Later files override
// earlier ones; process environment variables carrying the application
// prefix override any file value.
func (*GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	merged := make(map[string]string)

	for _, filename := range filenames {
		data, err := godotenv.Read(filename)
		if err != nil {
			return merged, fmt.Errorf("(config-godotenv) %w", err)
		}

		for key, value := range data {
			merged[key] = value
		}
	}

	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, envPrefix) {
			merged[key] = value
		}
	}

	return merged, nil
}

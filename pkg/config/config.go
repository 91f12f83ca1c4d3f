package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var loadOnce sync.Once

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New loads environment from the file named by ATENDE_ENV_FILE (falling back
// to .env in the working directory) and then populates T from environment
// variables with the given prefix.
func New[T any](prefix string) (*T, error) {
	var loadErr error
	loadOnce.Do(func() {
		if filepath := strings.TrimSpace(os.Getenv("ATENDE_ENV_FILE")); filepath != "" {
			loadErr = exportEnvironment(filepath)
			return
		}
		loadErr = exportEnvironmentIfExists(".env")
	})
	if loadErr != nil {
		return nil, fmt.Errorf("failed to load env file: %w", loadErr)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	viper.SetConfigFile(filepath)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	for k, v := range viper.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(v)); err != nil {
			return err
		}
	}

	return nil
}

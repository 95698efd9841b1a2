// Package config loads and validates the server configuration from a
// YAML file, one section per concern.
package config

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	"github.com/sugarswap/sugarswap"
)

// Config holds the complete server configuration
type Config struct {
	Server   sugarswap.ServerConf  `yaml:"server"`
	Sessions sugarswap.SessionConf `yaml:"sessions"`
	Logging  loggingConf           `yaml:"logging"`
	Storage  storageConf           `yaml:"storage"`
	Upstream upstreamConf          `yaml:"upstream"`
}

var conf Config

// Get returns the loaded Config
func Get() Config {
	return conf
}

// possibleConfigLocations are the default paths checked when no config
// file is passed on the command line
var possibleConfigLocations = []string{
	"config.yaml",
	"/etc/sugarswap/config.yaml",
}

// Load loads the configuration from the passed file path; if the path is
// empty, the default locations are searched. Running without any config
// file is allowed and uses the defaults.
func Load(file string) {
	conf = defaultConfig()
	if file == "" {
		for _, loc := range possibleConfigLocations {
			if fileutils.FileExists(loc) {
				file = loc
				break
			}
		}
	}
	if file == "" {
		log.Warn("no config file found, using defaults")
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			log.WithError(err).Fatal("could not read config file")
		}
		if err = yaml.Unmarshal(data, &conf); err != nil {
			log.WithError(err).Fatal("could not parse config file")
		}
	}
	if err := conf.validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
}

func defaultConfig() Config {
	return Config{
		Server: sugarswap.ServerConf{
			Port: 5000,
		},
		Logging:  defaultLoggingConf,
		Storage:  defaultStorageConf,
		Upstream: defaultUpstreamConf,
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.WebDir != "" && !fileutils.FileExists(c.Server.WebDir) {
		return errors.Errorf("web directory '%s' does not exist", c.Server.WebDir)
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.Upstream.validate()
}

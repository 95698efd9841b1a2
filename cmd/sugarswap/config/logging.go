package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/sugarswap/sugarswap/internal/logger"
)

// loggingConf holds all logging-related configuration under the `logging` key.
//
// YAML example:
//
//	logging:
//	  dir: /var/log/sugarswap
//	  stderr: false
//	  level: INFO
type loggingConf struct {
	logger.Conf `yaml:",inline"`
}

func (l *loggingConf) validate() error {
	if l.Dir != "" && !fileutils.FileExists(l.Dir) {
		return errors.Errorf("logging directory '%s' does not exist", l.Dir)
	}
	return nil
}

var defaultLoggingConf = loggingConf{
	Conf: logger.Conf{
		Level:  "INFO",
		StdErr: true,
	},
}

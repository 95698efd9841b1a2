// Package logger initializes the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const logFileName = "sugarswap.log"

// Conf holds configuration related to logging
type Conf struct {
	// Dir, if set, is a directory the log file is written to
	Dir string `yaml:"dir"`
	// StdErr additionally logs to stderr
	StdErr bool `yaml:"stderr"`
	// Level sets the verbosity (e.g. DEBUG, INFO, WARN, ERROR)
	Level string `yaml:"level"`
}

// Init configures the global logrus logger from the passed Conf
func Init(conf Conf) error {
	level := log.InfoLevel
	if conf.Level != "" {
		var err error
		if level, err = log.ParseLevel(conf.Level); err != nil {
			return err
		}
	}
	log.SetLevel(level)
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp: true,
		},
	)

	var outputs []io.Writer
	if conf.Dir != "" {
		f, err := os.OpenFile(
			filepath.Join(conf.Dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640,
		)
		if err != nil {
			return err
		}
		outputs = append(outputs, f)
	}
	if conf.StdErr || len(outputs) == 0 {
		outputs = append(outputs, os.Stderr)
	}
	if len(outputs) == 1 {
		log.SetOutput(outputs[0])
	} else {
		log.SetOutput(io.MultiWriter(outputs...))
	}
	return nil
}

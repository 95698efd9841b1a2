package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/duration"

	"github.com/sugarswap/sugarswap/product"
)

type upstreamConf struct {
	product.Config `yaml:",inline"`
}

func (c *upstreamConf) validate() error {
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.Errorf("upstream base_url '%s' is not an http(s) url", c.BaseURL)
	}
	if c.InsecureSkipVerify {
		log.Warn("upstream.insecure_skip_verify is enabled; upstream TLS chains are not validated")
	}
	return nil
}

var defaultUpstreamConf = upstreamConf{
	Config: product.Config{
		Timeout: duration.DurationOption(10 * time.Second),
	},
}

package sugarswap

import (
	"github.com/zachmann/go-utils/duration"
)

type ServerConf struct {
	IPListen          string   `yaml:"ip_listen"`
	Port              int      `yaml:"port"`
	TLS               tlsConf  `yaml:"tls"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`
	// WebDir, if set, is a directory with the frontend assets that is
	// served at the root path
	WebDir string `yaml:"web_dir"`
}

type tlsConf struct {
	Enabled      bool   `yaml:"enabled"`
	RedirectHTTP bool   `yaml:"redirect_http"`
	Cert         string `yaml:"cert"`
	Key          string `yaml:"key"`
}

// SessionConf configures the server-side session store that backs the
// session cookie
type SessionConf struct {
	CookieName string                  `yaml:"cookie_name"`
	Lifetime   duration.DurationOption `yaml:"lifetime"`
}

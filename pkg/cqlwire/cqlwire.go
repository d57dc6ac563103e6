// Package cqlwire assembles a Cassandra session from its configuration.
package cqlwire

import (
	"flag"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"

	"github.com/grafana/cqlwire/pkg/cassandra"
	"github.com/grafana/cqlwire/pkg/retry"
	"github.com/grafana/cqlwire/pkg/session"
	util_log "github.com/grafana/cqlwire/pkg/util/log"
)

// Config is the root config for cqlwire.
type Config struct {
	Cassandra cassandra.Config `yaml:"cassandra"`
	Execution session.Config   `yaml:"execution"`
	Retry     retry.Config     `yaml:"retry"`

	LogLevel  dslog.Level `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
}

// RegisterFlags registers flag.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	c.Cassandra.RegisterFlags(f)
	c.Execution.RegisterFlags(f)
	c.Retry.RegisterFlags(f)
	c.LogLevel.RegisterFlags(f)
	f.StringVar(&c.LogFormat, "log.format", "logfmt", "Output log messages in the given format. Valid formats: [logfmt, json]")
}

// Validate the config and returns an error if the validation
// doesn't pass
func (c *Config) Validate() error {
	if err := c.Cassandra.Validate(); err != nil {
		return errors.Wrap(err, "invalid cassandra config")
	}
	if err := c.Execution.Validate(); err != nil {
		return errors.Wrap(err, "invalid execution config")
	}
	if err := c.Retry.Validate(); err != nil {
		return errors.Wrap(err, "invalid retry config")
	}
	if c.LogFormat != "logfmt" && c.LogFormat != "json" {
		return errors.Errorf("unsupported log format %q", c.LogFormat)
	}
	return nil
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer, reg prometheus.Registerer) log.Logger {
	return util_log.NewLogger(w, c.LogLevel, c.LogFormat, reg)
}

// Client is a Session connected to Cassandra.
type Client struct {
	*session.Session

	close func()
}

// New connects to the cluster of cfg.Cassandra and returns a Client
// executing statements with the defaults of cfg.Execution and cfg.Retry.
// A nil logger is replaced by one writing to stderr per cfg.LogLevel and
// cfg.LogFormat.
func New(cfg Config, logger log.Logger, reg prometheus.Registerer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = util_log.InitLogger(cfg.LogLevel, cfg.LogFormat, reg)
	}
	transport, err := cassandra.NewClient(cfg.Cassandra, logger, reg)
	if err != nil {
		return nil, errors.Wrap(err, "creating cassandra client")
	}
	c, err := newClient(cfg, transport, logger, reg)
	if err != nil {
		transport.Close()
		return nil, err
	}
	c.close = transport.Close
	if reg != nil {
		reg.MustRegister(versioncollector.NewCollector("cqlwire"))
	}
	level.Info(logger).Log("msg", "cqlwire client ready", "version", version.Info())
	return c, nil
}

func newClient(cfg Config, transport session.Transport, logger log.Logger, reg prometheus.Registerer) (*Client, error) {
	if logger == nil {
		logger = cfg.Logger(os.Stderr, reg)
	}
	policy, err := retry.New(cfg.Retry, logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating retry policy")
	}
	s, err := session.New(cfg.Execution, transport, policy, logger, reg)
	if err != nil {
		return nil, err
	}
	level.Debug(logger).Log("msg", "session created", "retry_policy", retry.Name(policy), "consistency", cfg.Execution.Consistency)
	return &Client{Session: s, close: func() {}}, nil
}

// Close the connections to the cluster.
func (c *Client) Close() {
	c.close()
}

package session

import (
	"flag"
	"time"

	"github.com/grafana/dskit/backoff"
	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/consistency"
)

// Config holds the defaults of requests made through a Session.
type Config struct {
	Consistency       consistency.Level `yaml:"consistency"`
	SerialConsistency consistency.Level `yaml:"serial_consistency"`
	PageSize          int               `yaml:"page_size"`
	Timeout           time.Duration     `yaml:"timeout"`
	Backoff           backoff.Config    `yaml:"backoff"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.Consistency = consistency.LocalOne
	f.Var(&cfg.Consistency, "execution.consistency", "Default consistency level of requests.")
	cfg.SerialConsistency = consistency.Serial
	f.Var(&cfg.SerialConsistency, "execution.serial-consistency", "Default serial consistency level of conditional updates: SERIAL or LOCAL_SERIAL.")
	f.IntVar(&cfg.PageSize, "execution.page-size", 5000, "Default number of rows fetched per page.")
	f.DurationVar(&cfg.Timeout, "execution.timeout", 0, "Default timeout of a request including its retries. 0 to rely on the transport timeout only.")
	cfg.Backoff.RegisterFlagsWithPrefix("execution", f)
}

// Validate the config and returns an error if the validation doesn't pass.
func (cfg *Config) Validate() error {
	if !cfg.Consistency.Valid() {
		return errors.Errorf("invalid consistency level %s", cfg.Consistency)
	}
	if !cfg.SerialConsistency.IsSerial() {
		return errors.Errorf("invalid serial consistency level %s, must be SERIAL or LOCAL_SERIAL", cfg.SerialConsistency)
	}
	if cfg.PageSize <= 0 {
		return errors.Errorf("page size must be greater than 0, got %d", cfg.PageSize)
	}
	if cfg.Backoff.MinBackoff <= 0 || cfg.Backoff.MaxBackoff < cfg.Backoff.MinBackoff {
		return errors.Errorf("invalid backoff periods, min %s max %s", cfg.Backoff.MinBackoff, cfg.Backoff.MaxBackoff)
	}
	if cfg.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return nil
}

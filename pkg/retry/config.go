package retry

import (
	"flag"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config selects the retry policy of requests that do not set their own.
type Config struct {
	Policy       string `yaml:"policy"`
	LogDecisions bool   `yaml:"log_decisions"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&cfg.Policy, "retry.policy", "default", "Retry policy of requests: default, fallthrough or downgrading (deprecated).")
	f.BoolVar(&cfg.LogDecisions, "retry.log-decisions", false, "Log every retry policy decision that is not a rethrow.")
}

// Validate the config and returns an error if the validation doesn't pass.
func (cfg *Config) Validate() error {
	if _, err := newPolicy(cfg.Policy); err != nil {
		return err
	}
	return nil
}

func newPolicy(name string) (Policy, error) {
	switch name {
	case "", "default":
		return Default{}, nil
	case "fallthrough":
		return Fallthrough{}, nil
	case "downgrading", "downgrading-consistency":
		return DowngradingConsistency{}, nil
	default:
		return nil, errors.Errorf("unknown retry policy %q", name)
	}
}

// New returns the configured policy. Deprecated policies are reported once,
// here, rather than on every decision.
func New(cfg Config, logger log.Logger) (Policy, error) {
	p, err := newPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	if IsDeprecated(p) {
		level.Warn(logger).Log("msg", "retry policy is deprecated and may lower the requested consistency level, choose a lower consistency level explicitly instead", "policy", cfg.Policy)
	}
	if cfg.LogDecisions {
		return NewLogging(p, logger)
	}
	return p, nil
}

// Metrics counts retry policy decisions.
type Metrics struct {
	decisions *prometheus.CounterVec
}

func NewMetrics(r prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Namespace: "cqlwire",
			Name:      "retry_decisions_total",
			Help:      "Total number of retry policy decisions by policy and action.",
		}, []string{"policy", "action"}),
	}
}

// Observe records d as made by p. A nil Metrics is a no-op.
func (m *Metrics) Observe(p Policy, d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(Name(p), d.Action.String()).Inc()
}

// Decide asks p about err and records the decision.
func (m *Metrics) Decide(p Policy, err error, attempt int) Decision {
	d := p.Decide(err, attempt)
	m.Observe(p, d)
	return d
}

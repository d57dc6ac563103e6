package cassandra

import (
	"flag"
	"time"

	"github.com/gocql/gocql"
	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
)

// Config for a Client
type Config struct {
	Addresses                flagext.StringSliceCSV `yaml:"addresses"`
	Port                     int                    `yaml:"port"`
	Keyspace                 string                 `yaml:"keyspace"`
	DisableInitialHostLookup bool                   `yaml:"disable_initial_host_lookup"`
	SSL                      bool                   `yaml:"SSL"`
	HostVerification         bool                   `yaml:"host_verification"`
	CAPath                   string                 `yaml:"CA_path"`
	Auth                     bool                   `yaml:"auth"`
	Username                 string                 `yaml:"username"`
	Password                 flagext.Secret         `yaml:"password"`
	Timeout                  time.Duration          `yaml:"timeout"`
	ConnectTimeout           time.Duration          `yaml:"connect_timeout"`
	NumConnections           int                    `yaml:"num_connections"`
	ProtocolVersion          int                    `yaml:"protocol_version"`
	Compression              string                 `yaml:"compression"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.Var(&cfg.Addresses, "cassandra.addresses", "Comma-separated hostnames or IPs of Cassandra instances.")
	f.IntVar(&cfg.Port, "cassandra.port", 9042, "Port that Cassandra is running on")
	f.StringVar(&cfg.Keyspace, "cassandra.keyspace", "", "Keyspace to use in Cassandra.")
	f.BoolVar(&cfg.DisableInitialHostLookup, "cassandra.disable-initial-host-lookup", false, "Instruct the cassandra driver to not attempt to get host info from the system.peers table.")
	f.BoolVar(&cfg.SSL, "cassandra.ssl", false, "Use SSL when connecting to cassandra instances.")
	f.BoolVar(&cfg.HostVerification, "cassandra.host-verification", true, "Require SSL certificate validation.")
	f.StringVar(&cfg.CAPath, "cassandra.ca-path", "", "Path to certificate file to verify the peer.")
	f.BoolVar(&cfg.Auth, "cassandra.auth", false, "Enable password authentication when connecting to cassandra.")
	f.StringVar(&cfg.Username, "cassandra.username", "", "Username to use when connecting to cassandra.")
	f.Var(&cfg.Password, "cassandra.password", "Password to use when connecting to cassandra.")
	f.DurationVar(&cfg.Timeout, "cassandra.timeout", 2*time.Second, "Timeout when waiting for a response from cassandra.")
	f.DurationVar(&cfg.ConnectTimeout, "cassandra.connect-timeout", 5*time.Second, "Timeout when connecting to cassandra.")
	f.IntVar(&cfg.NumConnections, "cassandra.num-connections", 2, "Number of TCP connections per host.")
	f.IntVar(&cfg.ProtocolVersion, "cassandra.protocol-version", 4, "Native protocol version, 3 to 5. 0 to negotiate it.")
	f.StringVar(&cfg.Compression, "cassandra.compression", "", "Compression of request and response frames: snappy, lz4 or empty for none.")
}

// Validate the config and returns an error if the validation doesn't pass.
func (cfg *Config) Validate() error {
	if len(cfg.Addresses) == 0 {
		return errors.New("at least one cassandra address is required")
	}
	if cfg.ProtocolVersion != 0 && (cfg.ProtocolVersion < 3 || cfg.ProtocolVersion > 5) {
		return errors.Errorf("unsupported protocol version %d, collections are only encoded for versions 3 and above", cfg.ProtocolVersion)
	}
	if cfg.NumConnections <= 0 {
		return errors.Errorf("number of connections must be greater than 0, got %d", cfg.NumConnections)
	}
	if cfg.Compression != "" {
		if _, err := newCompressor(cfg.Compression); err != nil {
			return err
		}
	}
	if cfg.Auth && cfg.Username == "" {
		return errors.New("password authentication requires a username")
	}
	return nil
}

func (cfg *Config) clusterConfig() (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.Addresses...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.NumConns = cfg.NumConnections
	cluster.ProtoVersion = cfg.ProtocolVersion
	// retries are decided by the session retry policy
	cluster.RetryPolicy = nil
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy(), gocql.ShuffleReplicas())
	if cfg.Compression != "" {
		c, err := newCompressor(cfg.Compression)
		if err != nil {
			return nil, err
		}
		cluster.Compressor = c
	}
	cfg.setClusterConfig(cluster)
	return cluster, nil
}

// apply config settings to a cassandra ClusterConfig
func (cfg *Config) setClusterConfig(cluster *gocql.ClusterConfig) {
	cluster.DisableInitialHostLookup = cfg.DisableInitialHostLookup

	if cfg.SSL {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.CAPath,
			EnableHostVerification: cfg.HostVerification,
		}
	}
	if cfg.Auth {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password.String(),
		}
	}
}

package cfg

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grafana/dskit/flagext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yamlSource := dYAML([]byte(`
server:
  port: 2000
  timeout: 60h
tls:
  key: YAML
`), true)

	fs := flag.NewFlagSet(t.Name(), flag.PanicOnError)
	var c Data
	err := Unmarshal(&c, Defaults(fs), yamlSource, Flags([]string{"-verbose", "-server.port=21"}, fs))
	require.NoError(t, err)

	require.Equal(t, Data{
		Verbose: true,
		Server: Server{
			Port:    21,
			Timeout: 60 * time.Hour,
		},
		TLS: TLS{
			Cert: "CERT",
			Key:  flagext.SecretWithValue("YAML"),
		},
	}, c)
}

func TestParseConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: ${CQLWIRE_TEST_PORT}
  timeout: ${CQLWIRE_TEST_TIMEOUT:-5m}
tls:
  cert: YAML
`), 0o600))
	t.Setenv("CQLWIRE_TEST_PORT", "9042")

	var c Data
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	err := Parse(&c, []string{"-config.file=" + file, "-config.expand-env=true", "-tls.cert=flag"}, fs)
	require.NoError(t, err)

	assert.Equal(t, 9042, c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Server.Timeout)
	assert.Equal(t, "flag", c.TLS.Cert)
	assert.Equal(t, "KEY", c.TLS.Key.String())
}

func TestParseStrictYAML(t *testing.T) {
	var c Data
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	err := Unmarshal(&c, Defaults(fs), dYAML([]byte("server:\n  prot: 1\n"), true))
	require.Error(t, err)
}

func TestParseMissingConfigFile(t *testing.T) {
	var c Data
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	err := Parse(&c, []string{"-config.file=" + filepath.Join(t.TempDir(), "missing.yaml")}, fs)
	require.Error(t, err)
}

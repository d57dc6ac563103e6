package cfg

import (
	"bytes"
	"os"

	"github.com/drone/envsubst"
	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAML returns a Source that opens the supplied `.yaml` file and loads it.
// When expandEnvVars is true, variables in the supplied '.yaml' file are expanded
// using https://pkg.go.dev/github.com/drone/envsubst?tab=overview
func YAML(f string, expandEnvVars bool, strict bool) Source {
	return func(dst flagext.Registerer) error {
		y, err := os.ReadFile(f)
		if err != nil {
			return errors.Wrap(err, "Error reading config file")
		}

		if expandEnvVars {
			s, err := envsubst.EvalEnv(string(y))
			if err != nil {
				return errors.Wrap(err, "Error expanding env vars in config file")
			}
			y = []byte(s)
		}
		return dYAML(y, strict)(dst)
	}
}

// dYAML returns a YAML source and allows dependency injection
func dYAML(y []byte, strict bool) Source {
	return func(dst flagext.Registerer) error {
		if len(bytes.TrimSpace(y)) == 0 {
			return nil
		}
		dec := yaml.NewDecoder(bytes.NewReader(y))
		dec.KnownFields(strict)
		return errors.Wrap(dec.Decode(dst), "Error parsing config file")
	}
}

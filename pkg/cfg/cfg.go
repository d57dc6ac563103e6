package cfg

import (
	"flag"
	"io"
	"os"

	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"

	utilflagext "github.com/grafana/cqlwire/pkg/util/flagext"
)

// Source is a generic configuration source. This function may do whatever is
// required to obtain the configuration. It is passed a pointer to the
// destination, which will be something compatible to `yaml.Unmarshal`. The
// obtained configuration may be written to this object, it may also contain
// data from previous sources.
type Source func(flagext.Registerer) error

// Unmarshal merges the values of the various configuration sources and sets them on
// `dst`. The object must be compatible with `yaml.Unmarshal`.
func Unmarshal(dst flagext.Registerer, sources ...Source) error {
	if len(sources) == 0 {
		panic("No sources supplied to cfg.Unmarshal(). This is most likely a programming issue and should never happen. Check the code!")
	}
	for _, source := range sources {
		if err := source(dst); err != nil {
			return errors.Wrap(err, "sourcing")
		}
	}
	return nil
}

// Parse loads the configuration of dst from its flag defaults, the file
// named by -config.file and the command line arguments, in that order.
func Parse(dst flagext.Registerer, args []string, fs *flag.FlagSet) error {
	var (
		files     utilflagext.ConfigFiles
		expandEnv bool
	)
	RegisterConfigFileFlags(fs, &files, &expandEnv)
	return Unmarshal(dst,
		Defaults(fs),
		ConfigFileLoader(args, "config.file"),
		Flags(args, fs),
	)
}

// Defaults registers the flags of dst on fs, which sets dst to the flag
// defaults. It must be the first source.
func Defaults(fs *flag.FlagSet) Source {
	return func(dst flagext.Registerer) error {
		dst.RegisterFlags(fs)
		return nil
	}
}

// Flags parses the command line arguments. The flags must have been
// registered by Defaults.
func Flags(args []string, fs *flag.FlagSet) Source {
	return func(_ flagext.Registerer) error {
		// parse the final flagset
		return fs.Parse(args)
	}
}

// ConfigFileLoader loads the YAML files named by the -name flag of args.
// Environment variable references are expanded when -config.expand-env is
// set.
func ConfigFileLoader(args []string, name string) Source {
	return func(dst flagext.Registerer) error {
		freshFlags := flag.NewFlagSet("config-file-loader", flag.ContinueOnError)
		// ignore the flags of dst, only the config file flags are looked at
		freshFlags.SetOutput(io.Discard)
		freshFlags.Usage = func() {}

		var (
			files     utilflagext.ConfigFiles
			expandEnv bool
		)
		freshFlags.Var(&files, name, "")
		freshFlags.BoolVar(&expandEnv, "config.expand-env", false, "")

		for _, arg := range args {
			// parse one argument at a time so unknown flags do not stop the scan
			_ = freshFlags.Parse([]string{arg})
		}
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				return errors.Wrapf(err, "config file %q", f)
			}
			if err := YAML(f, expandEnv, true)(dst); err != nil {
				return err
			}
		}
		return nil
	}
}

// RegisterConfigFileFlags registers the flags read by ConfigFileLoader on fs
// so that they are accepted by Flags and listed in the usage.
func RegisterConfigFileFlags(fs *flag.FlagSet, files *utilflagext.ConfigFiles, expandEnv *bool) {
	fs.Var(files, "config.file", "yaml file to load, may be repeated")
	fs.BoolVar(expandEnv, "config.expand-env", false, "Expands ${VAR} or ${VAR:-default} references in the config files.")
}

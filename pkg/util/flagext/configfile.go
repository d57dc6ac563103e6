package flagext

import (
	"strings"
)

// ConfigFiles is a repeatable flag of config file paths. The files are
// loaded in the order they were given.
type ConfigFiles []string

// String implements flag.Value
// Format: file1.yaml,file2.yaml
func (cfgFiles *ConfigFiles) String() string {
	return strings.Join(*cfgFiles, ",")
}

// Set implements flag.Value. A comma separated value adds every file.
func (cfgFiles *ConfigFiles) Set(value string) error {
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			*cfgFiles = append(*cfgFiles, f)
		}
	}
	return nil
}

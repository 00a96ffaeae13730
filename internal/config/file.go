package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileEnv names a custom config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// KeyReplacer maps nested keys such as history.max_versions onto
// environment variable names.
func KeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// FindConfigFile picks the config file to read. Priority, highest first:
// the explicit flag value, RESREPO_CONFIG_FILE, then .resrepo.yml in the
// working directory. It returns "" when none applies.
func FindConfigFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(ConfigFileEnv); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}

	return ""
}

// Init prepares v for Load: environment overrides with the RESREPO_ prefix
// and the config file chosen by FindConfigFile. A missing default file is
// not an error; an explicit file that cannot be read is.
func Init(v *viper.Viper, flagValue string) (string, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(KeyReplacer())
	v.AutomaticEnv()

	file := FindConfigFile(flagValue)
	if file == "" {
		return "", nil
	}

	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", err
	}

	return v.ConfigFileUsed(), nil
}

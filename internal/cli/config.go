package cli

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/mod/module"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/loader"
	"github.com/toyz/restmeta/internal/resolver"
	"github.com/toyz/restmeta/internal/utils"
)

const (
	// ConfigName is the configuration file looked up in the working directory
	ConfigName = "restmeta"

	// EnvPrefix prefixes every environment variable override
	EnvPrefix = "RESTMETA"

	// DefaultOutputFile is the file written by generate
	DefaultOutputFile = utils.GeneratedFilePrefix + "routes.go"
)

// Config holds the resolved CLI configuration
type Config struct {
	// Roots are the ordered source roots to scan
	Roots []string `mapstructure:"roots" validate:"dive,required"`

	// Extensions are the recognized unit extensions
	Extensions []string `mapstructure:"extensions" validate:"min=1,dive,required"`

	// Module overrides the import path derived from go.mod
	Module string `mapstructure:"module" validate:"omitempty,import_path"`

	HandlePolicy string   `mapstructure:"handle_policy" validate:"oneof=none without-action verbs declared"`
	HandleVerbs  []string `mapstructure:"handle_verbs" validate:"required_if=HandlePolicy verbs,dive,required"`

	// CacheSize bounds the parsed unit cache
	CacheSize int `mapstructure:"cache_size" validate:"gte=1"`

	Output OutputConfig `mapstructure:"output"`
	Server ServerConfig `mapstructure:"server"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet" validate:"excluded_if=Verbose true"`
}

// OutputConfig controls rendering and generated files
type OutputConfig struct {
	Format  string `mapstructure:"format" validate:"oneof=table json yaml"`
	File    string `mapstructure:"file" validate:"required,endswith=.go"`
	Package string `mapstructure:"package" validate:"required"`
}

// ServerConfig controls the inspection server
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// FlagKeys maps configuration keys to the CLI flags that override them
var FlagKeys = map[string]string{
	"module":         "module",
	"extensions":     "ext",
	"handle_policy":  "handle-policy",
	"handle_verbs":   "handle-verbs",
	"cache_size":     "cache-size",
	"output.format":  "format",
	"output.file":    "file",
	"output.package": "package",
	"server.addr":    "addr",
	"verbose":        "verbose",
	"quiet":          "quiet",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("roots", []string{})
	v.SetDefault("extensions", []string{resolver.DefaultExtension})
	v.SetDefault("module", "")
	v.SetDefault("handle_policy", resolver.PolicyNone)
	v.SetDefault("handle_verbs", []string{})
	v.SetDefault("cache_size", loader.DefaultCacheSize)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.file", DefaultOutputFile)
	v.SetDefault("output.package", "routes")
	v.SetDefault("server.addr", ":8089")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
}

// LoadConfig reads configuration from the config file, RESTMETA_ environment
// variables and changed flags, in increasing precedence. An empty configFile
// looks for restmeta.yaml in the working directory; a missing default file is
// not an error.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, errors.WrapConfigurationError(key, "bind flag", err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(configSource(configFile), "read", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError(configSource(configFile), "decode", utils.WrapLoadError("settings", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	return ConfigName + ".yaml"
}

// WithRoots returns a copy of the configuration scanning the given roots.
// Go-style "dir/..." patterns are reduced to their base directory.
func (c Config) WithRoots(roots []string) Config {
	if len(roots) == 0 {
		return c
	}
	c.Roots = ExpandRoots(roots)
	return c
}

// ExpandRoots strips recursive "/..." suffixes. Discovery always descends.
func ExpandRoots(roots []string) []string {
	expanded := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "..." {
			root = "."
		} else if strings.HasSuffix(root, "/...") {
			root = strings.TrimSuffix(root, "/...")
			if root == "" {
				root = "."
			}
		}
		expanded = append(expanded, root)
	}
	return expanded
}

// Validate checks the configuration and reports every invalid key
func (c *Config) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return errors.WrapConfigurationError("settings", "validate", err)
		}

		var failures *errors.MultipleErrors
		for _, fe := range fieldErrs {
			errors.AddToMultiple(&failures, errors.ConfigurationError(configKey(fe), fieldMessage(fe)))
		}
		return failures.ErrorOrNil()
	}

	if _, err := c.Policy(); err != nil {
		return errors.ConfigurationError("handle_verbs", err.Error())
	}
	return nil
}

// Policy returns the configured handle policy
func (c *Config) Policy() (resolver.HandlePolicy, error) {
	return resolver.ParsePolicy(c.HandlePolicy, c.HandleVerbs)
}

// DiagnosticLevel maps verbose and quiet onto a console output level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

// NewResolver builds a resolver backed by the Go source loader
func (c *Config) NewResolver(logger *zap.Logger) (*resolver.Resolver, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, errors.ConfigurationError("handle_policy", err.Error())
	}

	units := loader.NewGoSourceResolver(loader.Options{
		ModulePath: c.Module,
		CacheSize:  c.CacheSize,
		Logger:     logger.Named("loader"),
	})

	return resolver.New(resolver.Options{
		Roots:      c.Roots,
		Extensions: c.Extensions,
		Units:      units,
		Policy:     policy,
		CacheSize:  c.CacheSize,
		Logger:     logger.Named("resolver"),
	})
}

func configValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("import_path", func(fl validator.FieldLevel) bool {
		return module.CheckImportPath(fl.Field().String()) == nil
	})
	return v
}

// configKey returns the dotted configuration key of a failed field
func configKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "value is required"
	case "min":
		return fmt.Sprintf("at least %s value(s) required", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got '%v'", fe.Param(), fe.Value())
	case "endswith":
		return fmt.Sprintf("must end with '%s', got '%v'", fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("must be a host:port address, got '%v'", fe.Value())
	case "import_path":
		return fmt.Sprintf("'%v' is not a valid import path", fe.Value())
	case "excluded_if":
		return "cannot be combined with verbose"
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

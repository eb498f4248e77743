// Package rpcconfig loads runtime configuration for the xdrsrv
// command-line tool: listen address, rpcbind registration, log level and
// format, and maximum message length. Configuration is layered — flags override
// environment variables (XDRPP_ prefix) override a config file — using
// Viper the way a cobra-based CLI conventionally wires it.
package rpcconfig

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServerConfig holds the settings an RPC server binary needs at
// startup. The validate tags are enforced by Load after the config
// file/env/flag layers are merged, so a typo'd log level or an absurd
// message-length cap is rejected at startup rather than surfacing as a
// confusing failure later.
type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr" validate:"required"`
	RegisterRPCBind bool   `mapstructure:"register_rpcbind"`
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string `mapstructure:"log_format" validate:"required,oneof=text json"`
	MaxMsgLen       uint32 `mapstructure:"max_msg_len" validate:"required,gt=0"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// DefaultServerConfig returns the built-in defaults, overridden by any
// config file, environment variable, or flag bound via Load.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      ":0",
		RegisterRPCBind: false,
		LogLevel:        "info",
		LogFormat:       "text",
		MaxMsgLen:       1 << 20,
	}
}

// Load reads configuration from (in ascending priority) built-in
// defaults, a config file named by cfgFile (if non-empty) or discovered
// as "xdrpp.yaml" in the working directory, XDRPP_-prefixed environment
// variables, and any flags already bound to v via BindFlags.
func Load(v *viper.Viper, cfgFile string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("register_rpcbind", cfg.RegisterRPCBind)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("max_msg_len", cfg.MaxMsgLen)

	v.SetEnvPrefix("xdrpp")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("xdrpp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return cfg, fmt.Errorf("rpcconfig: read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("rpcconfig: unmarshal: %w", err)
	}
	if err := configValidator.Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("rpcconfig: invalid configuration: %w", err)
	}
	return cfg, nil
}

// BindFlags binds a cobra command's flag set into v so flags take
// precedence over the config file and environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Package organizations parses organizations service flags and launches the service.
package organizations

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/orgspace/internal/platform/cmd"
	server "github.com/louisbranch/orgspace/internal/services/organizations/app"
)

// Config holds organizations command configuration.
type Config struct {
	Port int `env:"ORGSPACE_ORGANIZATIONS_PORT" envDefault:"8090"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The organizations gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the organizations service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOrganizations, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}

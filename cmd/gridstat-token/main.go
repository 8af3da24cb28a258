// gridstat-token mints a JWT access token for the gridstat admin API.
//
// Usage:
//
//	gridstat-token -subject ops -ttl 60
//
// The signing secret is read from the same configuration as the
// service (GRIDSTAT_CONFIG, falling back to configs/config.yaml), so a
// token minted on the host is always valid against the running API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nerrad567/gray-logic-gridstat/internal/auth"
	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/config"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Int("ttl", 15, "token lifetime in minutes")
	flag.Parse()

	if err := run(*subject, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(subject string, ttl int) error {
	configPath := os.Getenv("GRIDSTAT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token, err := auth.GenerateAccessToken(subject, cfg.Security.JWT.Secret, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

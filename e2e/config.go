package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR is the HTTP address of a running server, e.g. localhost:8080
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR"`
	// Tokens of two existing users, as printed by "admin token"
	AliceToken string `envconfig:"E2E_ALICE_TOKEN"`
	BobToken   string `envconfig:"E2E_BOB_TOKEN"`
	BobEmail   string `envconfig:"E2E_BOB_EMAIL"`
	// E2E_DEBUG_BODY dumps every HTTP response body
	DebugBody bool `envconfig:"E2E_DEBUG_BODY" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

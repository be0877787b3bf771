package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BadgerFilepath    string        `envconfig:"BADGER_FILEPATH" required:"true"`
	JWTSecret         string        `envconfig:"JWT_SECRET"`
	JWTIssuer         string        `envconfig:"JWT_ISSUER" default:"direct-chat"`
	AuthTokenDuration time.Duration `envconfig:"AUTH_TOKEN_DURATION" default:"24h"`
	// ADMIN_COLOURS enables colorized output
	Colours bool `envconfig:"ADMIN_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

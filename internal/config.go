package internal

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	HealthPort           int           `env:"HEALTH_PORT,default=8081"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	JWTIssuer            string        `env:"JWT_ISSUER,default=direct-chat"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	// One fan-out worker per shard, events of a channel keep their order
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,default=4"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=30s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ReadLimit            int64         `env:"READ_LIMIT,default=65536"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	// Code point of the masking character, 42 is "*"
	ModerationCharReplacement rune `env:"MODERATION_CHARACTER_REPLACEMENT,default=42"`
}

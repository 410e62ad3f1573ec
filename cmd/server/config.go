package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	MailboxSize          int           `env:"MAILBOX_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	GracePeriod          time.Duration `env:"GRACE_PERIOD,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/resonance"`
	AnthropicAPIKey      string        `env:"ANTHROPIC_API_KEY"`
	AIModel              string        `env:"AI_MODEL,default=claude-3-5-haiku-latest"`
	AIMaxElapsed         time.Duration `env:"AI_MAX_ELAPSED,default=8s"`
	NegationTimeout      time.Duration `env:"NEGATION_TIMEOUT,default=10s"`
	PlacementTimeout     time.Duration `env:"PLACEMENT_TIMEOUT,default=10s"`
}

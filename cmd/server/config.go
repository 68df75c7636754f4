package main

import "time"

type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	IndexFilepath             string        `env:"INDEX_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	TokenDuration             time.Duration `env:"TOKEN_DURATION,default=24h"`
	DeliveryTimeout           time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=5s"`
	HeartbeatInterval         time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	GCInterval                time.Duration `env:"GC_INTERVAL,default=5m"`
	ModerationEnabled         bool          `env:"MODERATION_ENABLED,default=true"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,default=42"`
}

package main

import "time"

type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	TokenSecret               string        `env:"TOKEN_SECRET,required=true"`
	TokenLifetime             time.Duration `env:"TOKEN_LIFETIME,default=24h"`
	HistoryLimit              int           `env:"HISTORY_LIMIT,default=20"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,default=42"`
	StorageGCInterval         time.Duration `env:"STORAGE_GC_INTERVAL,default=10m"`
	TelemetryInterval         time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	LogLevel                  string        `env:"LOG_LEVEL,default=INFO"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
}

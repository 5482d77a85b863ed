package main

import (
	"fmt"
	"time"
)

type Config struct {
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath        string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	SearchLimit          int           `env:"SEARCH_LIMIT,default=20"`
	RequestsPerSecond    int           `env:"REQUESTS_PER_SECOND,default=50"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

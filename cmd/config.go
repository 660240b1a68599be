package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	DebugPort         int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	MediaDir          string        `env:"MEDIA_DIR,default=./media"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	StorySweepPeriod  time.Duration `env:"STORY_SWEEP_PERIOD,default=1h"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
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

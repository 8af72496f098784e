package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// TEST_FRAME_TIMEOUT bounds how long a scenario waits for one frame
	FrameTimeout time.Duration `envconfig:"TEST_FRAME_TIMEOUT" default:"3s"`
	// TEST_TYPING_TIMEOUT is the presence expiry used by the scenarios,
	// kept short so the stop event shows up quickly
	TypingTimeout time.Duration `envconfig:"TEST_TYPING_TIMEOUT" default:"300ms"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

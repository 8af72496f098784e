package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=5000"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	BufferSize           int `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SnapshotSize         int `env:"SNAPSHOT_SIZE,default=5"`

	TypingTimeout   time.Duration `env:"TYPING_TIMEOUT,default=3s"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=5s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`

	LowCapacityThreshold int    `env:"LOW_CAPACITY_THRESHOLD,default=20"`
	CharReplacement      string `env:"CHARACTER_REPLACEMENT,default=*"`

	SyntheticActivity   bool          `env:"SYNTHETIC_ACTIVITY,default=false"`
	SyntheticMinPeriod  time.Duration `env:"SYNTHETIC_MIN_PERIOD,default=10s"`
	SyntheticMaxPeriod  time.Duration `env:"SYNTHETIC_MAX_PERIOD,default=30s"`
	SyntheticTypingOdds float64       `env:"SYNTHETIC_TYPING_ODDS,default=0.3"`

	DebugPort int `env:"DEBUG_PORT,default=6060"`
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

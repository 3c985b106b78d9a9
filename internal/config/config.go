// Package config loads the enumerated ROOM_*/MAX_FREQUENCY/HEADLESS table
// from the environment, an optional .env file, and CLI flag overrides,
// following the getEnv(key, default) shape used elsewhere in this
// ecosystem plus a dotenv-style preload and a pflag-based CLI layer over
// it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config is the fully-resolved set of environment-style inputs spec.md §6
// enumerates.
type Config struct {
	RoomWidth, RoomHeight, RoomDepth float64
	MaxFrequency                     float64
	AirDampening                     float64

	Headless          bool
	SimIterations     int
	IterationsPerStep int
	WindowSize        int
}

// Load reads .env (if present, silently ignored if not), then the process
// environment, then overlays CLI flags parsed from args. MAX_FREQUENCY is
// required (no default); SIM_ITERATIONS is required when HEADLESS is true.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RoomWidth:         getEnvFloat("ROOM_WIDTH", 1.0),
		RoomHeight:        getEnvFloat("ROOM_HEIGHT", 1.0),
		RoomDepth:         getEnvFloat("ROOM_DEPTH", 1.0),
		AirDampening:      getEnvFloat("AIR_DAMPENING", 1.0),
		Headless:          getEnvBool("HEADLESS", false),
		IterationsPerStep: getEnvInt("ITERATIONS_PER_STEP", 1),
		WindowSize:        getEnvInt("WINDOW_SIZE", 500),
	}

	maxFreqStr := os.Getenv("MAX_FREQUENCY")
	if maxFreqStr != "" {
		v, err := strconv.ParseFloat(maxFreqStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_FREQUENCY: %w", err)
		}
		cfg.MaxFrequency = v
	}
	if simIterStr := os.Getenv("SIM_ITERATIONS"); simIterStr != "" {
		v, err := strconv.Atoi(simIterStr)
		if err != nil {
			return Config{}, fmt.Errorf("SIM_ITERATIONS: %w", err)
		}
		cfg.SimIterations = v
	}

	flags := pflag.NewFlagSet("fdtd", pflag.ContinueOnError)
	width := flags.Float64("room-width", cfg.RoomWidth, "room width in metres")
	height := flags.Float64("room-height", cfg.RoomHeight, "room height in metres")
	depth := flags.Float64("room-depth", cfg.RoomDepth, "room depth in metres")
	maxFreq := flags.Float64("max-frequency", cfg.MaxFrequency, "upper bound of interest, Hz")
	airDampening := flags.Float64("air-dampening", cfg.AirDampening, "per-step multiplicative loss factor in (0,1]")
	headless := flags.Bool("headless", cfg.Headless, "run without a viewer window")
	simIterations := flags.Int("sim-iterations", cfg.SimIterations, "headless step count")
	iterationsPerStep := flags.Int("iterations-per-step", cfg.IterationsPerStep, "engine steps per rendered frame")
	windowSize := flags.Int("window-size", cfg.WindowSize, "viewer window size in pixels")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.RoomWidth, cfg.RoomHeight, cfg.RoomDepth = *width, *height, *depth
	cfg.MaxFrequency = *maxFreq
	cfg.AirDampening = *airDampening
	cfg.Headless = *headless
	cfg.SimIterations = *simIterations
	cfg.IterationsPerStep = *iterationsPerStep
	cfg.WindowSize = *windowSize

	if cfg.MaxFrequency <= 0 {
		return Config{}, fmt.Errorf("MAX_FREQUENCY (or --max-frequency) is required")
	}
	if cfg.Headless && cfg.SimIterations <= 0 {
		return Config{}, fmt.Errorf("SIM_ITERATIONS (or --sim-iterations) is required when HEADLESS is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvInt(key string, defaultValue int) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1"
}

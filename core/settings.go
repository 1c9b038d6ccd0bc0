package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	ex "capm.service/data/extensions"
)

const (
	DefaultAddr      = ":8080"
	DefaultBenchmark = "SP500"
	DefaultOrigin    = "http://localhost:3000"
)

// Settings is the process configuration, read from the environment once on start up
type Settings struct {
	HttpAddr     string
	CorsOrigins  []string
	DatabaseUrl  string
	Benchmark    string
	RiskFreeRate float64
	Formula      CapmFormula
	WindowLength int
	TrainSplit   float64
	LogLevel     log.Level
}

func DefaultSettings() Settings {
	return Settings{
		HttpAddr:     DefaultAddr,
		CorsOrigins:  []string{DefaultOrigin},
		Benchmark:    DefaultBenchmark,
		RiskFreeRate: 0,
		Formula:      FormulaConventional,
		WindowLength: DefaultWindowLength,
		TrainSplit:   DefaultTrainSplit,
		LogLevel:     log.InfoLevel,
	}
}

// LoadSettings reads the environment on top of the defaults, main loads .env before calling this
func LoadSettings() (Settings, error) {
	return loadSettings(os.Getenv)
}

func loadSettings(getenv func(string) string) (Settings, error) {
	s := DefaultSettings()
	var err error

	s.DatabaseUrl = getenv("DATABASE_URL")
	if s.DatabaseUrl == "" {
		return s, fmt.Errorf("DATABASE_URL is required")
	}

	if v := getenv("HTTP_ADDR"); v != "" {
		s.HttpAddr = v
	}

	if v := getenv("CORS_ORIGINS"); v != "" {
		s.CorsOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				s.CorsOrigins = append(s.CorsOrigins, origin)
			}
		}
		if len(s.CorsOrigins) == 0 {
			return s, fmt.Errorf("CORS_ORIGINS has no origins")
		}
	}

	if v := getenv("BENCHMARK_SYMBOL"); v != "" {
		s.Benchmark = ex.NormalizeSymbol(v)
	}

	if v := getenv("RISK_FREE_RATE"); v != "" {
		if s.RiskFreeRate, err = strconv.ParseFloat(v, 64); err != nil {
			return s, fmt.Errorf("RISK_FREE_RATE: %w", err)
		}
	}

	if s.Formula, err = ParseCapmFormula(getenv("CAPM_FORMULA")); err != nil {
		return s, fmt.Errorf("CAPM_FORMULA: %w", err)
	}

	if v := getenv("PREDICTION_WINDOW"); v != "" {
		if s.WindowLength, err = strconv.Atoi(v); err != nil {
			return s, fmt.Errorf("PREDICTION_WINDOW: %w", err)
		}
		if s.WindowLength <= 0 {
			return s, fmt.Errorf("PREDICTION_WINDOW must be positive, got %d", s.WindowLength)
		}
	}

	if v := getenv("PREDICTION_SPLIT"); v != "" {
		if s.TrainSplit, err = strconv.ParseFloat(v, 64); err != nil {
			return s, fmt.Errorf("PREDICTION_SPLIT: %w", err)
		}
		if s.TrainSplit <= 0 || s.TrainSplit >= 1 {
			return s, fmt.Errorf("PREDICTION_SPLIT must be between 0 and 1, got %v", s.TrainSplit)
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if s.LogLevel, err = log.ParseLevel(strings.TrimSpace(v)); err != nil {
			return s, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return s, nil
}

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidWeights is returned at load time when the dimension weights do
// not sum to 1.0 within tolerance. It is fatal: the process must not start.
var ErrInvalidWeights = errors.New("scoring weights must sum to 1.0")

const weightTolerance = 1e-3

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Schedule struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"` // e.g. "0 30 22 * * MON-FRI"
	} `yaml:"schedule"`
	FRED struct {
		APIKey       string            `yaml:"api_key"`
		BaseURL      string            `yaml:"base_url"`
		Timeout      time.Duration     `yaml:"timeout"`
		CacheTTL     time.Duration     `yaml:"cache_ttl"`
		LookbackYrs  int               `yaml:"lookback_years"`
		Series       map[string]string `yaml:"series"` // indicator key -> FRED series ID
	} `yaml:"fred"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		MemoryMaxSize int `yaml:"memory_max_size"`
	} `yaml:"cache"`
	Scoring Scoring `yaml:"scoring"`
	Alerts  Alerts  `yaml:"alerts"`
	Signals Signals `yaml:"signals"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Scoring holds dimension weights and per-scorer rule thresholds. Thresholds
// are data, not control flow: backtest sweeps and recalibration happen here,
// never in code.
type Scoring struct {
	Weights struct {
		Recession   float64 `yaml:"recession"`
		Credit      float64 `yaml:"credit"`
		Valuation   float64 `yaml:"valuation"`
		Liquidity   float64 `yaml:"liquidity"`
		Positioning float64 `yaml:"positioning"`
	} `yaml:"weights"`
	ElevatedThreshold float64 `yaml:"elevated_threshold"`

	Recession struct {
		ClaimsSevere  float64 `yaml:"claims_severe"` // YoY % spike
		ClaimsHigh    float64 `yaml:"claims_high"`
		ClaimsWatch   float64 `yaml:"claims_watch"`
		PMIDeep       float64 `yaml:"pmi_deep"`
		PMIBoundary   float64 `yaml:"pmi_boundary"`
		CurveDeep     float64 `yaml:"curve_deep"` // 10Y-2Y, pp
		Curve3MDeep   float64 `yaml:"curve_3m_deep"`
		SentimentLow  float64 `yaml:"sentiment_low"`
		SentimentWeak float64 `yaml:"sentiment_weak"`
	} `yaml:"recession"`
	Credit struct {
		VelocitySevere float64 `yaml:"velocity_severe"` // 20-day % widening
		VelocityHigh   float64 `yaml:"velocity_high"`
		VelocityWatch  float64 `yaml:"velocity_watch"`
		LevelSevere    float64 `yaml:"level_severe"` // bps
		LevelHigh      float64 `yaml:"level_high"`
		LevelWatch     float64 `yaml:"level_watch"`
		VelocityWeight float64 `yaml:"velocity_weight"`
		LevelWeight    float64 `yaml:"level_weight"`
		IGSevere       float64 `yaml:"ig_severe"`
		IGHigh         float64 `yaml:"ig_high"`
		IGWatch        float64 `yaml:"ig_watch"`
		TEDSevere      float64 `yaml:"ted_severe"`
		TEDHigh        float64 `yaml:"ted_high"`
		LendingSevere  float64 `yaml:"lending_severe"`
		LendingHigh    float64 `yaml:"lending_high"`
	} `yaml:"credit"`
	Valuation struct {
		CAPEExtreme float64 `yaml:"cape_extreme"`
		CAPESevere  float64 `yaml:"cape_severe"`
		CAPEHigh    float64 `yaml:"cape_high"`
		CAPEWatch   float64 `yaml:"cape_watch"`
		BuffettHigh float64 `yaml:"buffett_high"` // % of GDP
		PESevere    float64 `yaml:"pe_severe"`
		PEHigh      float64 `yaml:"pe_high"`
		PEWatch     float64 `yaml:"pe_watch"`
	} `yaml:"valuation"`
	Liquidity struct {
		FedDeltaSevere float64 `yaml:"fed_delta_severe"` // pp over 6 months
		FedDeltaHigh   float64 `yaml:"fed_delta_high"`
		M2Contraction  float64 `yaml:"m2_contraction"` // YoY %
		M2Low          float64 `yaml:"m2_low"`
		VIXPanic       float64 `yaml:"vix_panic"`
		VIXStress      float64 `yaml:"vix_stress"`
		VIXElevated    float64 `yaml:"vix_elevated"`
	} `yaml:"liquidity"`
	Positioning struct {
		PercentileSevere float64 `yaml:"percentile_severe"`
		PercentileHigh   float64 `yaml:"percentile_high"`
		VIXComplacent    float64 `yaml:"vix_complacent"`
		VIXLow           float64 `yaml:"vix_low"`
	} `yaml:"positioning"`
}

// Alerts holds thresholds for tier classification and the alert decision.
// Shipped defaults follow the later empirical calibration (4.0/5.0); the
// earlier 6.5/8.0 calibration remains valid configuration.
type Alerts struct {
	YellowThreshold           float64 `yaml:"yellow_threshold"`
	RedThreshold              float64 `yaml:"red_threshold"`
	RapidChangeThreshold      float64 `yaml:"rapid_change_threshold"`
	RapidChangePeriods        int     `yaml:"rapid_change_periods"`
	ExtremeDimensionThreshold float64 `yaml:"extreme_dimension_threshold"`
	ExtremeDimensionCount     int     `yaml:"extreme_dimension_count"`
}

// Signals holds per-detector thresholds.
type Signals struct {
	Valuation         ValuationSignal         `yaml:"valuation"`
	DoubleInversion   DoubleInversionSignal   `yaml:"double_inversion"`
	RealRate          RealRateSignal          `yaml:"real_rate"`
	Earnings          EarningsSignal          `yaml:"earnings"`
	Housing           HousingSignal           `yaml:"housing"`
	Dollar            DollarSignal            `yaml:"dollar"`
	LiquidityOverride LiquidityOverrideSignal `yaml:"liquidity_override"`
}

type ValuationSignal struct {
	CAPEThreshold    float64 `yaml:"cape_threshold"`
	BuffettThreshold float64 `yaml:"buffett_threshold"`
	CAPEExtreme      float64 `yaml:"cape_extreme"`
	BuffettExtreme   float64 `yaml:"buffett_extreme"`
}

type DoubleInversionSignal struct {
	CurveThreshold float64 `yaml:"curve_threshold"` // pp
	HYThreshold    float64 `yaml:"hy_threshold"`    // bps
	HYSevere       float64 `yaml:"hy_severe"`
}

type RealRateSignal struct {
	RealRateThreshold float64 `yaml:"real_rate_threshold"` // pp
	VelocityThreshold float64 `yaml:"velocity_threshold"`  // pp per 6 months
}

type EarningsSignal struct {
	DeclineThreshold float64 `yaml:"decline_threshold"` // % over 12 months
}

type HousingSignal struct {
	PriceYoYThreshold     float64 `yaml:"price_yoy_threshold"`
	MortgageRateThreshold float64 `yaml:"mortgage_rate_threshold"`
}

type DollarSignal struct {
	Change3MThreshold float64 `yaml:"change_3m_threshold"`
	Change3MAlone     float64 `yaml:"change_3m_alone"`
	SwapPercentile    float64 `yaml:"swap_percentile"`
}

type LiquidityOverrideSignal struct {
	ScoreThreshold    float64 `yaml:"score_threshold"`
	VelocityThreshold float64 `yaml:"velocity_threshold"` // pp per 6 months (3.0 == 300bps)
}

// WeightFor returns the configured weight for a dimension name.
func (s *Scoring) WeightFor(dim string) float64 {
	switch dim {
	case "recession":
		return s.Weights.Recession
	case "credit":
		return s.Weights.Credit
	case "valuation":
		return s.Weights.Valuation
	case "liquidity":
		return s.Weights.Liquidity
	case "positioning":
		return s.Weights.Positioning
	}
	return 0
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("AEGIS_FRED_API_KEY"); v != "" {
		c.FRED.APIKey = v
	}
	if v := os.Getenv("AEGIS_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("AEGIS_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("AEGIS_YELLOW_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Alerts.YellowThreshold = f
		}
	}
	if v := os.Getenv("AEGIS_RED_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Alerts.RedThreshold = f
		}
	}

	return c, nil
}

// Validate checks the configuration. A weight-sum violation is fatal: a
// silently renormalized global weight set would make every historical score
// incomparable.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	w := c.Scoring.Weights
	sum := w.Recession + w.Credit + w.Valuation + w.Liquidity + w.Positioning
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: got %.4f", ErrInvalidWeights, sum)
	}

	if c.Alerts.YellowThreshold <= 0 || c.Alerts.RedThreshold <= 0 {
		return fmt.Errorf("alerts.yellow_threshold and alerts.red_threshold are required")
	}
	if c.Alerts.RedThreshold < c.Alerts.YellowThreshold {
		return fmt.Errorf("alerts.red_threshold must be >= alerts.yellow_threshold")
	}
	if c.Alerts.RapidChangePeriods <= 0 {
		c.Alerts.RapidChangePeriods = 4
	}
	if c.Scoring.ElevatedThreshold <= 0 {
		c.Scoring.ElevatedThreshold = 7.0
	}

	return nil
}

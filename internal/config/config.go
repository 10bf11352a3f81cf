package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// IndicatorConfig holds every indicator window length and band setting.
// It is passed explicitly into the engine; there is no global state.
type IndicatorConfig struct {
	MAShort int `yaml:"ma_short"`
	MAMid   int `yaml:"ma_mid"`
	MALong  int `yaml:"ma_long"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	RSIShort int `yaml:"rsi_short"`
	RSILong  int `yaml:"rsi_long"`

	RCIShort int `yaml:"rci_short"`
	RCILong  int `yaml:"rci_long"`

	BBPeriod       int     `yaml:"bb_period"`
	BBStdDev       float64 `yaml:"bb_std_dev"`
	BBSqueezeRatio float64 `yaml:"bb_squeeze_ratio"`

	IchimokuTenkan       int `yaml:"ichimoku_tenkan"`
	IchimokuKijun        int `yaml:"ichimoku_kijun"`
	IchimokuSenkouB      int `yaml:"ichimoku_senkou_b"`
	IchimokuDisplacement int `yaml:"ichimoku_displacement"`
}

// RulesConfig holds the classifier thresholds.
type RulesConfig struct {
	RSIBuyCeiling float64 `yaml:"rsi_buy_ceiling"`
	RSISellFloor  float64 `yaml:"rsi_sell_floor"`
	RCILevel      float64 `yaml:"rci_level"`
	RCIShortGate  float64 `yaml:"rci_short_gate"`
	CrossWindow   int     `yaml:"cross_window"`
}

// ScreenConfig holds the cross-sectional bucket thresholds.
type ScreenConfig struct {
	VolumeMin           float64 `yaml:"volume_min"`
	PullbackGapPct      float64 `yaml:"pullback_gap_pct"`
	PullbackRisePct     float64 `yaml:"pullback_rise_pct"`
	BreakoutLookback    int     `yaml:"breakout_lookback"`
	BreakoutVolumeRatio float64 `yaml:"breakout_volume_ratio"`
	BreakoutMinBars     int     `yaml:"breakout_min_bars"`
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		Source       string `yaml:"source"` // yahoo | csv | mock
		RosterFile   string `yaml:"roster_file"`
		CSVDir       string `yaml:"csv_dir"`
		TickerSuffix string `yaml:"ticker_suffix"`
		HistoryDays  int    `yaml:"history_days"`
		MinBars      int    `yaml:"min_bars"`
		BatchSize    int    `yaml:"batch_size"`
		BatchWaitMS  int    `yaml:"batch_wait_ms"`
		TickerWaitMS int    `yaml:"ticker_wait_ms"`
	} `yaml:"data"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Rules     RulesConfig     `yaml:"rules"`
	Screen    ScreenConfig    `yaml:"screen"`
	Output    struct {
		Dir          string `yaml:"dir"`
		TechnicalDir string `yaml:"technical_dir"`
		PreviousDir  string `yaml:"previous_dir"`
		LatestFile   string `yaml:"latest_file"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.Data.Source = v
	}
	if v := os.Getenv("ROSTER_FILE"); v != "" {
		cfg.Data.RosterFile = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		cfg.Data.CSVDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("TECHNICAL_DIR"); v != "" {
		cfg.Output.TechnicalDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Data.HistoryDays = n
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Data.Source == "" {
		cfg.Data.Source = "yahoo"
	}
	if cfg.Data.TickerSuffix == "" {
		cfg.Data.TickerSuffix = ".T"
	}
	if cfg.Data.HistoryDays == 0 {
		cfg.Data.HistoryDays = 180
	}
	if cfg.Data.MinBars == 0 {
		cfg.Data.MinBars = 30
	}
	if cfg.Data.BatchSize == 0 {
		cfg.Data.BatchSize = 100
	}
	if cfg.Data.BatchWaitMS == 0 {
		cfg.Data.BatchWaitMS = 5000
	}
	if cfg.Data.TickerWaitMS == 0 {
		cfg.Data.TickerWaitMS = 500
	}

	ind := &cfg.Indicator
	if ind.MAShort == 0 {
		ind.MAShort = 5
	}
	if ind.MAMid == 0 {
		ind.MAMid = 25
	}
	if ind.MALong == 0 {
		ind.MALong = 75
	}
	if ind.MACDFast == 0 {
		ind.MACDFast = 12
	}
	if ind.MACDSlow == 0 {
		ind.MACDSlow = 26
	}
	if ind.MACDSignal == 0 {
		ind.MACDSignal = 9
	}
	if ind.RSIShort == 0 {
		ind.RSIShort = 9
	}
	if ind.RSILong == 0 {
		ind.RSILong = 14
	}
	if ind.RCIShort == 0 {
		ind.RCIShort = 9
	}
	if ind.RCILong == 0 {
		ind.RCILong = 26
	}
	if ind.BBPeriod == 0 {
		ind.BBPeriod = 20
	}
	if ind.BBStdDev == 0 {
		ind.BBStdDev = 2.0
	}
	if ind.BBSqueezeRatio == 0 {
		ind.BBSqueezeRatio = 0.8
	}
	if ind.IchimokuTenkan == 0 {
		ind.IchimokuTenkan = 9
	}
	if ind.IchimokuKijun == 0 {
		ind.IchimokuKijun = 26
	}
	if ind.IchimokuSenkouB == 0 {
		ind.IchimokuSenkouB = 52
	}
	if ind.IchimokuDisplacement == 0 {
		ind.IchimokuDisplacement = 26
	}

	rules := &cfg.Rules
	if rules.RSIBuyCeiling == 0 {
		rules.RSIBuyCeiling = 40
	}
	if rules.RSISellFloor == 0 {
		rules.RSISellFloor = 60
	}
	if rules.RCILevel == 0 {
		rules.RCILevel = 80
	}
	if rules.RCIShortGate == 0 {
		rules.RCIShortGate = 50
	}
	if rules.CrossWindow == 0 {
		rules.CrossWindow = 5
	}

	scr := &cfg.Screen
	if scr.VolumeMin == 0 {
		scr.VolumeMin = 100000
	}
	if scr.PullbackGapPct == 0 {
		scr.PullbackGapPct = 2.0
	}
	if scr.PullbackRisePct == 0 {
		scr.PullbackRisePct = 0.3
	}
	if scr.BreakoutLookback == 0 {
		scr.BreakoutLookback = 22
	}
	if scr.BreakoutVolumeRatio == 0 {
		scr.BreakoutVolumeRatio = 1.5
	}
	if scr.BreakoutMinBars == 0 {
		scr.BreakoutMinBars = 30
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "result"
	}
	if cfg.Output.TechnicalDir == "" {
		cfg.Output.TechnicalDir = "result/technical"
	}
	if cfg.Output.PreviousDir == "" {
		cfg.Output.PreviousDir = "result/previous"
	}
	if cfg.Output.LatestFile == "" {
		cfg.Output.LatestFile = "latest_signal.csv"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 15 * * 1-5"
	}
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.Data.RosterFile == "" {
		return fmt.Errorf("data.roster_file is required")
	}
	switch c.Data.Source {
	case "yahoo", "csv", "mock":
	default:
		return fmt.Errorf("data.source must be yahoo, csv or mock, got %q", c.Data.Source)
	}
	if c.Data.Source == "csv" && c.Data.CSVDir == "" {
		return fmt.Errorf("data.csv_dir is required when data.source is csv")
	}
	ind := c.Indicator
	if !(ind.MAShort < ind.MAMid && ind.MAMid < ind.MALong) {
		return fmt.Errorf("ma windows must be strictly increasing: %d/%d/%d", ind.MAShort, ind.MAMid, ind.MALong)
	}
	if ind.MACDFast >= ind.MACDSlow {
		return fmt.Errorf("macd_fast must be shorter than macd_slow")
	}
	if ind.RSIShort >= ind.RSILong {
		return fmt.Errorf("rsi_short must be shorter than rsi_long")
	}
	if ind.RCIShort >= ind.RCILong {
		return fmt.Errorf("rci_short must be shorter than rci_long")
	}
	if ind.BBPeriod < 2 {
		return fmt.Errorf("bb_period must be at least 2")
	}
	if ind.IchimokuDisplacement <= 0 {
		return fmt.Errorf("ichimoku_displacement must be positive")
	}
	if c.Rules.CrossWindow < 2 {
		return fmt.Errorf("rules.cross_window must be at least 2")
	}
	if c.Screen.BreakoutLookback < 2 {
		return fmt.Errorf("screen.breakout_lookback must be at least 2")
	}
	return nil
}

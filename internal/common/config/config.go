package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Features FeatureConfig  `mapstructure:"features"`
	Targets  TargetConfig   `mapstructure:"targets"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Evidence EvidenceConfig `mapstructure:"evidence"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig toggles optional analysis layers. All flags are read once at
// startup; the engines receive them by value and never consult the environment.
type FeatureConfig struct {
	StrategyFit      bool `mapstructure:"strategy_fit"`
	LessonsLearned   bool `mapstructure:"lessons_learned"`
	FinancePack      bool `mapstructure:"finance_pack"`
	SchedulePack     bool `mapstructure:"schedule_pack"`
	ExternalEvidence bool `mapstructure:"external_evidence"`
	LeanReport       bool `mapstructure:"lean_report"`
}

// TargetConfig holds the performance targets the heuristics compare against.
type TargetConfig struct {
	CPI   float64 `mapstructure:"cpi"`
	SPI   float64 `mapstructure:"spi"`
	Index float64 `mapstructure:"index"` // ISP / IDP / IDCo / IDB target
}

type RiskConfig struct {
	// HighThreshold is the score at which a project is classified "Alto".
	// Historical deployments used 7; it is tunable but 7 is the default.
	HighThreshold float64 `mapstructure:"high_threshold"`
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // milliseconds
}

type EvidenceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	DocumentAI DocumentAIConfig `mapstructure:"document_ai"`
	Reasoning  ReasoningConfig  `mapstructure:"reasoning"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
}

// DocumentAIConfig holds settings for the document extraction service.
type DocumentAIConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

func (d DocumentAIConfig) Timeout() time.Duration {
	if d.TimeoutSec <= 0 {
		return 120 * time.Second
	}
	return time.Duration(d.TimeoutSec) * time.Second
}

// ReasoningConfig holds settings for the risk-scoring model endpoint.
// The endpoint speaks the chat-completions protocol.
type ReasoningConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutSec  int     `mapstructure:"timeout_sec"`
}

func (r ReasoningConfig) Timeout() time.Duration {
	if r.TimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(r.TimeoutSec) * time.Second
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
	CacheTTL int    `mapstructure:"cache_ttl_sec"`
}

// PolicyConfig carries the bank policy thresholds and the business
// constants used by the risk engine. The payment rate and net-income
// ratio come from the product team and are pending confirmation with
// the domain owners; they are configuration, not code.
type PolicyConfig struct {
	MaxDTIRatio         float64 `mapstructure:"max_dti_ratio"`
	MinEmploymentMonths int     `mapstructure:"min_employment_months"`
	MinMonthlyGrossEUR  float64 `mapstructure:"min_monthly_gross_eur"`
	MonthlyPaymentRate  float64 `mapstructure:"monthly_payment_rate"`
	NetIncomeGrossRatio float64 `mapstructure:"net_income_gross_ratio"`
	MinLoanAmountEUR    float64 `mapstructure:"min_loan_amount_eur"`
	MaxLoanAmountEUR    float64 `mapstructure:"max_loan_amount_eur"`
	LoanAmountStepEUR   float64 `mapstructure:"loan_amount_step_eur"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

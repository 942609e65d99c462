// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DOCUMENT_AI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overrides, e.g. config.production.yaml.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the working directory upwards so tests run
// from package directories still pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loan-processor"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.DocumentAI.Model == "" {
		cfg.DocumentAI.Model = "mistral-document-ai-2505"
	}
	if cfg.DocumentAI.TimeoutSec == 0 {
		cfg.DocumentAI.TimeoutSec = 120
	}
	if cfg.DocumentAI.APIKey == "" {
		cfg.DocumentAI.APIKey = os.Getenv("DOCUMENT_AI_API_KEY")
	}
	if cfg.DocumentAI.Endpoint == "" {
		cfg.DocumentAI.Endpoint = os.Getenv("DOCUMENT_AI_ENDPOINT")
	}
	if cfg.Reasoning.Temperature == 0 {
		cfg.Reasoning.Temperature = 0.3
	}
	if cfg.Reasoning.MaxTokens == 0 {
		cfg.Reasoning.MaxTokens = 2000
	}
	if cfg.Reasoning.TimeoutSec == 0 {
		cfg.Reasoning.TimeoutSec = 60
	}
	if cfg.Reasoning.APIKey == "" {
		cfg.Reasoning.APIKey = os.Getenv("REASONING_API_KEY")
	}
	if cfg.Reasoning.BaseURL == "" {
		cfg.Reasoning.BaseURL = os.Getenv("REASONING_BASE_URL")
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = os.Getenv("MONGODB_URI")
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "loan_processor"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "loan_applications"
	}
	if cfg.Mongo.TimeoutSec == 0 {
		cfg.Mongo.TimeoutSec = 5
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 600
	}
	if cfg.Policy.MaxDTIRatio == 0 {
		cfg.Policy.MaxDTIRatio = 0.40
	}
	if cfg.Policy.MinEmploymentMonths == 0 {
		cfg.Policy.MinEmploymentMonths = 6
	}
	if cfg.Policy.MinMonthlyGrossEUR == 0 {
		cfg.Policy.MinMonthlyGrossEUR = 2000
	}
	if cfg.Policy.MonthlyPaymentRate == 0 {
		cfg.Policy.MonthlyPaymentRate = 0.02
	}
	if cfg.Policy.NetIncomeGrossRatio == 0 {
		cfg.Policy.NetIncomeGrossRatio = 0.7
	}
	if cfg.Policy.MinLoanAmountEUR == 0 {
		cfg.Policy.MinLoanAmountEUR = 5000
	}
	if cfg.Policy.MaxLoanAmountEUR == 0 {
		cfg.Policy.MaxLoanAmountEUR = 50000
	}
	if cfg.Policy.LoanAmountStepEUR == 0 {
		cfg.Policy.LoanAmountStepEUR = 1000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Policy.MonthlyPaymentRate <= 0 || cfg.Policy.MonthlyPaymentRate >= 1 {
		return fmt.Errorf("policy.monthly_payment_rate must be in (0,1), got %v", cfg.Policy.MonthlyPaymentRate)
	}
	if cfg.Policy.NetIncomeGrossRatio <= 0 || cfg.Policy.NetIncomeGrossRatio > 1 {
		return fmt.Errorf("policy.net_income_gross_ratio must be in (0,1], got %v", cfg.Policy.NetIncomeGrossRatio)
	}
	if cfg.Policy.MaxLoanAmountEUR < cfg.Policy.MinLoanAmountEUR {
		return fmt.Errorf("policy.max_loan_amount_eur below min_loan_amount_eur")
	}
	return nil
}

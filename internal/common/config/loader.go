// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (plus config.<APP_ENVIRONMENT>.yaml when
// present), applies environment overrides and validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory, so tests run from package directories pick up the root file.
func loadEnvFile() string {
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
				return path
			}
		}
	}
	return ""
}

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

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.APIs.LLM.APIKey, "GROQ_API_KEY")
	setIfEmpty(&cfg.APIs.News.APIKey, "NEWSAPI_KEY")

	setIfEmpty(&cfg.Email.FromEmail, "SES_FROM_EMAIL")
	setIfEmpty(&cfg.Email.FromEmail, "SMTP_FROM")
	setIfEmpty(&cfg.Email.SMTP.Host, "SMTP_HOST")
	setIfEmpty(&cfg.Email.SMTP.Username, "SMTP_USERNAME")
	setIfEmpty(&cfg.Email.SMTP.Password, "SMTP_PASSWORD")
	if cfg.Email.SMTP.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
			cfg.Email.SMTP.Port = port
		}
	}
	setIfEmpty(&cfg.Email.SES.Region, "AWS_REGION")

	setIfEmpty(&cfg.Notifications.SNS.TopicARN, "SNS_TOPIC_ARN")
	setIfEmpty(&cfg.Notifications.SNS.Region, "AWS_REGION")

	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
	setIfEmpty(&cfg.Observability.JaegerEndpoint, "JAEGER_ENDPOINT")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pk-market-chat"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 5
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 120000
	}

	llm := &cfg.APIs.LLM
	if llm.BaseURL == "" {
		llm.BaseURL = "https://api.groq.com/openai/v1"
	}
	if llm.Model == "" {
		llm.Model = "llama3-70b-8192"
	}
	if llm.Temperature == 0 {
		llm.Temperature = 0.7
	}
	if llm.MaxTokens == 0 {
		llm.MaxTokens = 300
	}
	if llm.EmailMaxTokens == 0 {
		llm.EmailMaxTokens = 500
	}
	if llm.Timeout == 0 {
		llm.Timeout = 60000
	}

	news := &cfg.APIs.News
	if news.BaseURL == "" {
		news.BaseURL = "https://newsapi.org/v2/everything"
	}
	if news.Query == "" {
		news.Query = "Pakistan economy"
	}
	if news.Language == "" {
		news.Language = "en"
	}
	if news.SortBy == "" {
		news.SortBy = "publishedAt"
	}
	if news.WindowDays == 0 {
		news.WindowDays = 7
	}
	if news.PageSize == 0 {
		news.PageSize = 5
	}
	if news.Timeout == 0 {
		news.Timeout = 30000
	}

	market := &cfg.APIs.Market
	if market.URL == "" {
		market.URL = "https://www.psx.com.pk/market-summary/"
	}
	if market.UserAgent == "" {
		market.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if market.Timeout == 0 {
		market.Timeout = 10000
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "smtp"
	}
	if cfg.Email.AttachmentsDir == "" {
		cfg.Email.AttachmentsDir = filepath.Join("data", "temp_attachments")
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = 30000
	}
	if cfg.Email.SMTP.Port == 0 {
		cfg.Email.SMTP.Port = 587
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1.0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. The news key is
// deliberately optional: without it every news fetch degrades to a
// placeholder instead of stopping the process.
func validateConfig(cfg *Config) error {
	if cfg.APIs.LLM.APIKey == "" {
		return fmt.Errorf("apis.llm.api_key (or GROQ_API_KEY) is required")
	}
	if cfg.APIs.LLM.MaxTokens < 0 || cfg.APIs.LLM.EmailMaxTokens < 0 {
		return fmt.Errorf("apis.llm max tokens must be positive")
	}

	switch cfg.Email.Provider {
	case "smtp", "ses":
	default:
		return fmt.Errorf("email.provider must be 'smtp' or 'ses', got %q", cfg.Email.Provider)
	}
	if cfg.Email.Provider == "ses" && cfg.Email.SES.Region == "" {
		return fmt.Errorf("email.ses.region is required for the ses provider")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

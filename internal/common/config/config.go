// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	APIs          APIsConfig          `mapstructure:"apis"`
	Email         EmailConfig         `mapstructure:"email"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address         string   `mapstructure:"address"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
}

// CamundaConfig enables the chat-respond job worker when a broker is set.
type CamundaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

// APIsConfig holds the outbound data and model endpoints.
type APIsConfig struct {
	LLM struct {
		BaseURL        string  `mapstructure:"base_url"`
		APIKey         string  `mapstructure:"api_key"`
		Model          string  `mapstructure:"model"`
		Temperature    float32 `mapstructure:"temperature"`
		MaxTokens      int     `mapstructure:"max_tokens"`
		EmailMaxTokens int     `mapstructure:"email_max_tokens"`
		Timeout        int     `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"llm"`

	News struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Query      string `mapstructure:"query"`
		Language   string `mapstructure:"language"`
		SortBy     string `mapstructure:"sort_by"`
		WindowDays int    `mapstructure:"window_days"`
		PageSize   int    `mapstructure:"page_size"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"news"`

	Market struct {
		URL       string `mapstructure:"url"`
		UserAgent string `mapstructure:"user_agent"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"market"`
}

// EmailConfig selects the delivery backend for transcript summaries.
type EmailConfig struct {
	Provider       string `mapstructure:"provider"` // "smtp" or "ses"
	FromEmail      string `mapstructure:"from_email"`
	AttachmentsDir string `mapstructure:"attachments_dir"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`

	SES struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"ses"`
}

// NotificationConfig holds the optional dispatch event topic.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

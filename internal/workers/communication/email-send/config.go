package emailsend

import (
	"fmt"
	"time"
)

type Config struct {
	Provider     string
	FromEmail    string
	Timeout      time.Duration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	UseTLS       bool
	SESRegion    string
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderSMTP,
		Timeout:  30 * time.Second,
		SMTPPort: 587,
		UseTLS:   true,
	}
}

// From returns the sender address, falling back to the SMTP login.
func (c *Config) From() string {
	if c.FromEmail != "" {
		return c.FromEmail
	}
	return c.SMTPUsername
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp host is required")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return fmt.Errorf("smtp port must be between 1 and 65535")
		}
	case ProviderSES:
		if c.SESRegion == "" {
			return fmt.Errorf("ses region is required")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Provider)
	}
	if c.From() == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

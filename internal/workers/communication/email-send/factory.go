package emailsend

import (
	"context"
	"fmt"

	awsclient "pk-market-chat/internal/common/aws"
	"pk-market-chat/internal/common/logger"
)

// NewSender builds the sender selected by config.Provider.
func NewSender(ctx context.Context, config *Config, log logger.Logger) (Sender, error) {
	switch config.Provider {
	case ProviderSMTP, "":
		return NewSMTPSender(config, log), nil
	case ProviderSES:
		client, err := awsclient.NewSESClient(ctx, config.SESRegion)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return NewSESSender(config, client, log), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", config.Provider)
	}
}

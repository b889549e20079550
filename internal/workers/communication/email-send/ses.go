package emailsend

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	awsclient "pk-market-chat/internal/common/aws"
	"pk-market-chat/internal/common/logger"
)

// SESSender delivers through Amazon SES as a raw MIME message, which is the
// only SES call that carries attachments.
type SESSender struct {
	config    *Config
	sesClient awsclient.SESService
	logger    logger.Logger
}

func NewSESSender(config *Config, client awsclient.SESService, log logger.Logger) *SESSender {
	return &SESSender{
		config:    config,
		sesClient: client,
		logger:    logger.ForComponent(log, "email-send"),
	}
}

func (s *SESSender) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if msg.From == "" {
		msg.From = s.config.From()
	}
	if err := validateMessage(msg); err != nil {
		return nil, err
	}

	raw, err := buildMIME(msg, newMessageID(msg.From))
	if err != nil {
		return nil, err
	}

	s.logger.Info("sending email", map[string]interface{}{
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": len(msg.Attachments),
		"provider":    ProviderSES,
	})

	out, err := s.sesClient.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.From),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return nil, fmt.Errorf("ses send raw email: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	s.logger.Info("email sent", map[string]interface{}{
		"to":        msg.To,
		"messageId": messageID,
	})
	return &Receipt{MessageID: messageID, Provider: ProviderSES, SentAt: time.Now().UTC()}, nil
}

// internal/workers/communication/summary-notify/handler.go
package summarynotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclient "pk-market-chat/internal/common/aws"
	"pk-market-chat/internal/common/logger"
)

const EventSummaryDispatched = "summary_dispatched"

// Event announces that a transcript summary left the system.
type Event struct {
	Type        string    `json:"type"`
	Recipient   string    `json:"recipient"`
	Mode        string    `json:"mode"`
	Subject     string    `json:"subject"`
	PDFFilename string    `json:"pdfFilename"`
	MessageID   string    `json:"messageId"`
	Provider    string    `json:"provider"`
	SentAt      time.Time `json:"sentAt"`
}

// SNSNotifier publishes dispatch events to a topic.
type SNSNotifier struct {
	topicARN  string
	snsClient awsclient.SNSService
	logger    logger.Logger
}

func NewSNSNotifier(topicARN string, client awsclient.SNSService, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		topicARN:  topicARN,
		snsClient: client,
		logger:    logger.ForComponent(log, "summary-notify"),
	}
}

func (n *SNSNotifier) Notify(ctx context.Context, evt Event) error {
	if evt.Type == "" {
		evt.Type = EventSummaryDispatched
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	out, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
		Subject:  aws.String("Chat summary dispatched"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(evt.Type)},
			"mode":      {DataType: aws.String("String"), StringValue: aws.String(evt.Mode)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	n.logger.Info("dispatch event published", map[string]interface{}{
		"snsMessageId": aws.ToString(out.MessageId),
		"recipient":    evt.Recipient,
	})
	return nil
}

package summarynotify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pk-market-chat/internal/common/logger"
)

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestNotify_Publishes(t *testing.T) {
	var captured *sns.PublishInput
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
		},
	}

	n := NewSNSNotifier("arn:aws:sns:us-east-1:123:summaries", mockSNS, logger.NewTestLogger(t))
	err := n.Notify(context.Background(), Event{
		Recipient:   "a@b.com",
		Mode:        "stock",
		Subject:     "PSX summary",
		PDFFilename: "chat_summary.pdf",
		SentAt:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:summaries", aws.ToString(captured.TopicArn))
	assert.Equal(t, EventSummaryDispatched, aws.ToString(captured.MessageAttributes["eventType"].StringValue))

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.Message)), &evt))
	assert.Equal(t, EventSummaryDispatched, evt.Type)
	assert.Equal(t, "a@b.com", evt.Recipient)
	assert.Equal(t, "chat_summary.pdf", evt.PDFFilename)
}

func TestNotify_Error(t *testing.T) {
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("AuthorizationError")
		},
	}

	err := NewSNSNotifier("arn", mockSNS, logger.NewNoOpLogger()).Notify(context.Background(), Event{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationError")
}

package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/pkg/logger"
)

// Message is one rendered email ready for delivery.
type Message struct {
	To           string
	FromEmail    string
	Subject      string
	Body         string
	ContentType  domain.ContentType
	CampaignID   string
	SubscriberID string
}

// Sender delivers one message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender writes messages to the structured log instead of sending
// them. Used in development and tests.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *Message) error {
	logger.Info("SIMULATED EMAIL",
		"to", msg.To,
		"from", msg.FromEmail,
		"subject", msg.Subject,
		"campaign_id", msg.CampaignID,
		"bytes", len(msg.Body))
	return nil
}

// SESSender delivers through AWS SES v2.
type SESSender struct {
	client *sesv2.Client
}

// NewSESSender builds a sender for the given region using the default
// AWS credential chain.
func NewSESSender(ctx context.Context, region string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg)}, nil
}

func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	body := &types.Body{}
	if msg.ContentType == domain.ContentHTML {
		body.Html = &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")}
	} else {
		body.Text = &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.FromEmail),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("campaign_id"), Value: aws.String(msg.CampaignID)},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}

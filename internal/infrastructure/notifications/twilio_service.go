package notifications

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/larkes/communities-api/domain"
)

// messageCreator is the slice of the Twilio API the service uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioServiceImpl implements domain.NotificationService
type TwilioServiceImpl struct {
	api        messageCreator
	fromNumber string
	logger     *logrus.Logger
}

// NewTwilioService creates a new Twilio notification service.
// Without a sender number messages are only logged, which is how development runs.
func NewTwilioService(accountSID, authToken, fromNumber string, logger *logrus.Logger) *TwilioServiceImpl {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		api:        client.Api,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// SendSMS implements domain.NotificationService
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		// The body carries the code, so only the masked recipient is logged
		t.logger.WithField("to", domain.MaskPhone(to)).Debug("mock SMS, no sender configured")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		t.logger.WithField("sid", *resp.Sid).Debug("SMS queued")
	}
	return nil
}

var _ domain.NotificationService = (*TwilioServiceImpl)(nil)

// services/channel.go
package services

import (
	"errors"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Channel delivers one message to one contact address and reports the
// provider confirmation id. Implementations must not retry internally;
// retry policy belongs to the next scheduled run.
type Channel interface {
	Send(to, body string) (sid string, err error)
}

// TwilioChannel sends WhatsApp messages through the Twilio REST API.
type TwilioChannel struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioChannel(accountSID, authToken, from string) *TwilioChannel {
	return &TwilioChannel{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *TwilioChannel) Send(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(body)
	params.SetFrom(t.from)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", errors.New("twilio returned no message SID")
	}
	return *resp.Sid, nil
}

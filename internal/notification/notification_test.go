package notification

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/offgridpay/solsync/config"
)

func TestSlackNotification(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{
		Notification: config.Notification{
			Slack: config.SlackWebhook{WebhookUrl: "https://hooks.slack.test/services/abc"},
		},
	})

	httpmock.RegisterResponder("POST", "https://hooks.slack.test/services/abc",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{"ok": true}))

	SlackNotification(errors.New("ledger network unavailable"))

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST https://hooks.slack.test/services/abc"])
}

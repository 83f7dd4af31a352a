package emailsvc

import (
	"io"
	"log"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core"
	logsvc "github.com/trezcool/eduos/services/logger"
)

func Test_sendgridService_build(t *testing.T) {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	svc, ok := NewSendgridService(logger).(*sendgridService)
	require.True(t, ok)

	msg := core.EmailMessage{
		To:           []mail.Address{{Name: "Amy Alpha", Address: "amy@eduos.test"}},
		Bcc:          []mail.Address{{Address: "audit@eduos.test"}},
		Subject:      "Welcome",
		TemplateName: "welcome",
		TextContent:  "hello",
	}

	t.Run("Text only", func(t *testing.T) {
		svc.sandbox = false
		m := svc.build(msg)

		require.Len(t, m.Personalizations, 1)
		p := m.Personalizations[0]
		assert.Equal(t, "["+core.Conf.AppName+"] Welcome", p.Subject)
		require.Len(t, p.To, 1)
		assert.Equal(t, "amy@eduos.test", p.To[0].Address)
		assert.Empty(t, p.CC)
		assert.Len(t, p.BCC, 1)

		assert.Equal(t, []string{"eduos", "welcome"}, m.Categories)
		require.Len(t, m.Content, 1)
		assert.Equal(t, "text/plain", m.Content[0].Type)
		assert.Nil(t, m.MailSettings)
	})

	t.Run("HTML and sandbox", func(t *testing.T) {
		svc.sandbox = true
		withHTML := msg
		withHTML.HTMLContent = "<p>hello</p>"
		m := svc.build(withHTML)

		require.Len(t, m.Content, 2)
		assert.Equal(t, "text/html", m.Content[1].Type)
		require.NotNil(t, m.MailSettings)
		require.NotNil(t, m.MailSettings.SandboxMode)
		assert.True(t, *m.MailSettings.SandboxMode.Enable)
	})
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core"
)

func TestEmailMessage_Render(t *testing.T) {
	data := struct {
		FirstName string
		Role      core.Role
		Email     string
	}{FirstName: "Amy", Role: core.RoleStudent, Email: "amy@eduos.test"}

	t.Run("Welcome template", func(t *testing.T) {
		msg := core.EmailMessage{TemplateName: "welcome", TemplateData: data}
		require.NoError(t, msg.Render())

		assert.Contains(t, msg.TextContent, "Hi Amy,")
		assert.Contains(t, msg.TextContent, "with the student role")
		assert.Contains(t, msg.TextContent, core.Conf.FrontendBaseURL+"/login")
		assert.Contains(t, msg.TextContent, "The "+core.Conf.AppName+" team")
		assert.Contains(t, msg.HTMLContent, "<strong>student</strong>")
		assert.True(t, msg.HasContent())
	})

	t.Run("Plain body wins over the text template", func(t *testing.T) {
		msg := core.EmailMessage{TemplateName: "welcome", TemplateData: data, BodyStr: "plain"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "plain", msg.TextContent)
		assert.NotEmpty(t, msg.HTMLContent)
	})

	t.Run("No template", func(t *testing.T) {
		msg := core.EmailMessage{BodyStr: "plain"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "plain", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.False(t, msg.HasRecipients())
	})

	t.Run("Unknown template", func(t *testing.T) {
		msg := core.EmailMessage{TemplateName: "nope"}
		assert.EqualError(t, msg.Render(), `unknown email template "nope"`)
	})
}

package mail

import (
	"fmt"
	"html/template"
	"strings"
)

var onboardingTemplate = template.Must(template.New("onboard").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2933;">
    <p>Hi {{.Name}},</p>
    <p>
      Welcome to Develop for Good! Your volunteer workspace account is ready.
    </p>
    <p>
      <strong>Email:</strong> {{.Email}}<br />
      <strong>Temporary password:</strong> {{.TemporaryPassword}}
    </p>
    <p>
      Sign in at <a href="https://workspace.google.com">workspace.google.com</a>
      and you will be prompted to choose a new password.
    </p>
    <p>&mdash; The Develop for Good team</p>
  </body>
</html>
`))

type onboardingContext struct {
	Name              string
	Email             string
	TemporaryPassword string
}

// renderOnboarding produces the HTML body of the onboarding email.
func renderOnboarding(params OnboardingEmailParams) (string, error) {
	var b strings.Builder
	err := onboardingTemplate.Execute(&b, onboardingContext{
		Name:              params.FirstName,
		Email:             params.WorkspaceEmail,
		TemporaryPassword: params.TemporaryPassword,
	})
	if err != nil {
		return "", fmt.Errorf("rendering onboarding email: %w", err)
	}
	return b.String(), nil
}

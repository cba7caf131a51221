package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is the fallback body.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// WelcomeJob builds the email sent right after registration.
func WelcomeJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome to users-api",
		Text:    "Hi " + name + ",\n\nYour account has been created. You can now log in with your email address.",
	}
}

// PasswordChangedJob builds the notification sent after a password change.
func PasswordChangedJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Your password was changed",
		Text:    "Hi " + name + ",\n\nYour password was just changed. If this was not you, contact support immediately.",
	}
}

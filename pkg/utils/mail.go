package utils

import (
	"context"
	"fmt"

	"github.com/reviewhub/reviewhub/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings, passed in from app config.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// SendConfirmationEmail delivers the signup confirmation code out-of-band.
func SendConfirmationEmail(ctx context.Context, config EmailConfig, email, username string, code int64, log *logger.Logger) error {
	textBody := fmt.Sprintf(`Hello %s,

Your reviewhub confirmation code is: %08d

Exchange it for an access token at %s/api/v1/auth/token/.
The code expires in 24 hours.

If you didn't sign up, ignore this email.
`, username, code, config.AppURL)

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.FromEmail)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Confirmation code")
	msg.SetBody("text/plain", textBody)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Warn(ctx).WithMeta(Map{"email": email}).WithFields(err).Logs("Failed to send confirmation email: %v")
		return WrapError(err, ErrInternalServerError.Code, "Failed to send confirmation email")
	}

	log.Info(ctx).WithMeta(Map{"email": email}).WithFields(email).Logs("Confirmation email sent to: %s")
	return nil
}

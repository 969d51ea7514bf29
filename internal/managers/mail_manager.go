// Package managers handles the sending of verification code emails using the
// Mailgun service and the Hermes package for email formatting.
package managers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes a method for delivering verification codes to user mailboxes.
type MailMgr interface {
	SendVerifyCodeMail(email, username, code string) error
}

// ErrRecipientRejected indicates that the mail provider refused the
// recipient address. Callers map this to a client error instead of a
// delivery failure.
var ErrRecipientRejected = errors.New("mail provider rejected recipient")

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "Todo API <team@mail.todo-api.dev>"
var environment string

// SendVerifyCodeMail sends a verification code email to a user. The email
// content is formatted using the Hermes package and sent using the Mailgun
// service. Outside production the send is skipped so local flows stay offline.
func (mm *MailManager) SendVerifyCodeMail(email, username, code string) error {
	if environment != "production" {
		log.Info("Skipping verification mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You requested a verification code for your account.",
				"If you did not request this code, you can safely ignore this email.",
			},
			Outros: []string{
				"The code stays valid until you request a new one.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your account, enter the following code:",
					InviteCode:   code,
				},
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer func() {
		if err := ctx.Err(); err != nil {
			log.Debug("Context error: ", err)
		}
		cancel()
		log.Debug("Context canceled")
	}()

	message := mm.Mailgun.NewMessage(from, "Your verification code", "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending verification mail: " + err.Error())
		return classifySendError(err)
	}
	log.Debug("Verification mail sent to ", email)

	return nil
}

// classifySendError separates provider rejections of the recipient from
// transport failures so handlers can answer with the right status.
func classifySendError(err error) error {
	var unexpected *mailgun.UnexpectedResponseError
	if errors.As(err, &unexpected) && unexpected.Actual >= 400 && unexpected.Actual < 500 {
		return fmt.Errorf("%w: %v", ErrRecipientRejected, err)
	}

	return err
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
// This function is used during the initialization phase of the application.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	// Check if running in production
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.todo-api.dev", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Todo API",
				Link:        "https://todo-api.dev/",
				Logo:        "https://todo-api.dev/logo.png",
				Copyright:   "© Todo API",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}

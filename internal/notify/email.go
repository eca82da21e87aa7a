package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"

	"railway/internal/domain/models"
	"railway/internal/utils"
)

// Recipient is where a ticket owner's mail goes.
type Recipient struct {
	Name  string
	Email string
}

// Directory resolves owners to contact details.
type Directory interface {
	UserByID(ctx context.Context, id string) (models.User, error)
	EmployeeByID(ctx context.Context, id string) (models.Employee, error)
}

// DirectoryRecipients adapts a Directory into a recipient lookup.
func DirectoryRecipients(dir Directory) func(ctx context.Context, owner models.Owner) (Recipient, error) {
	return func(ctx context.Context, owner models.Owner) (Recipient, error) {
		if owner.Kind == models.OwnerEmployee {
			e, err := dir.EmployeeByID(ctx, owner.ID)
			if err != nil {
				return Recipient{}, err
			}
			return Recipient{Name: e.Name, Email: e.Email}, nil
		}
		u, err := dir.UserByID(ctx, owner.ID)
		if err != nil {
			return Recipient{}, err
		}
		return Recipient{Name: u.Name, Email: u.Email}, nil
	}
}

// EmailNotifier mails ticket owners about their bookings. A failed delivery is
// logged and the message is still acknowledged.
type EmailNotifier struct {
	Mailer     Mailer
	Recipients func(ctx context.Context, owner models.Owner) (Recipient, error)
}

func (n EmailNotifier) Handle(msg *message.Message) error {
	topic := message.SubscribeTopicFromCtx(msg.Context())
	ev, err := decodeEvent(msg)
	if err != nil {
		utils.LogError(msg.Metadata.Get("request_id"), "notify", topic, err)
		return nil
	}
	log := logrus.WithFields(logrus.Fields{
		"module":     "notify",
		"action":     topic,
		"request_id": ev.RequestID,
		"pnr_no":     ev.PNR,
	})

	rcpt, err := n.Recipients(msg.Context(), ev.Owner)
	if err != nil {
		log.WithError(err).Warn("recipient lookup failed")
		return nil
	}
	if strings.TrimSpace(rcpt.Email) == "" {
		log.Debug("owner has no email address")
		return nil
	}

	mail := Compose(topic, ev, rcpt)
	if err := n.Mailer.Send(msg.Context(), mail); err != nil {
		log.WithError(err).Error("email delivery failed")
		return nil
	}
	log.Info("email sent")
	return nil
}

// Compose renders the mail for one event.
func Compose(topic string, ev TicketEvent, rcpt Recipient) Mail {
	journey := fmt.Sprintf("Train %s, %s -> %s on %s", ev.TrainNo, ev.Source, ev.Destination, ev.JourneyDate)
	var subject string
	var lines []string
	switch topic {
	case TopicTicketBooked:
		subject = fmt.Sprintf("Booking %s: %s", ev.PNR, strings.ToUpper(ev.Status))
		lines = append(lines, journey, "Passenger: "+ev.PassengerName, "Status: "+strings.ToUpper(ev.Status))
		if ev.BerthID > 0 {
			lines = append(lines, fmt.Sprintf("Berth: %d", ev.BerthID))
		}
		if ev.WaitingPosition > 0 {
			lines = append(lines, fmt.Sprintf("Waiting list position: %d", ev.WaitingPosition))
		}
		if ev.Fare > 0 {
			lines = append(lines, "Fare: "+utils.FormatRupees(ev.Fare))
		}
	case TopicTicketCancelled:
		subject = fmt.Sprintf("Ticket %s cancelled", ev.PNR)
		lines = append(lines, journey, "Passenger: "+ev.PassengerName)
		if ev.Refund > 0 {
			lines = append(lines, "Refund: "+utils.FormatRupees(ev.Refund))
		}
	case TopicTicketPromoted:
		subject = fmt.Sprintf("Ticket %s confirmed from waiting list", ev.PNR)
		lines = append(lines, journey, "Passenger: "+ev.PassengerName, fmt.Sprintf("Berth: %d", ev.BerthID))
	default:
		subject = fmt.Sprintf("Ticket %s update", ev.PNR)
		lines = append(lines, journey)
	}

	body := fmt.Sprintf("Dear %s,\n\n%s\n\nPNR: %s\n", rcpt.Name, strings.Join(lines, "\n"), ev.PNR)
	return Mail{To: rcpt.Email, Subject: subject, Body: body}
}

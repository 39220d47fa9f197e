package notify

import (
	"context"
	"fmt"
	"strings"

	"movebot/models"
	"movebot/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends notifications over SMTP.
type Mailer struct {
	dialer       *gomail.Dialer
	from         string
	managerEmail string
}

func NewMailer(host string, port int, username, password, managerEmail string) *Mailer {
	return &Mailer{
		dialer:       gomail.NewDialer(host, port, username, password),
		from:         username,
		managerEmail: managerEmail,
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		utils.GetLogger().Error("email delivery failed",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}
	utils.GetLogger().Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func bookingRows(rec models.BookingRecord) string {
	row := func(label, value string) string {
		if value == "" {
			value = "—"
		}
		return fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", label, value)
	}
	var sb strings.Builder
	sb.WriteString("<table cellpadding='4'>")
	sb.WriteString(row("Name", rec.Name))
	sb.WriteString(row("Phone", rec.Phone))
	sb.WriteString(row("Email", rec.Email))
	sb.WriteString(row("Pickup", rec.PickupAddress))
	sb.WriteString(row("Drop-off", rec.DropAddress))
	sb.WriteString(row("Home size", rec.HomeSize))
	sb.WriteString(row("Stairs/Elevator", rec.StairsElevator))
	sb.WriteString(row("Move date", rec.MoveDate))
	sb.WriteString(row("Time preference", rec.TimePreference))
	sb.WriteString(row("Move type", rec.MoveType))
	sb.WriteString(row("Estimated cost", rec.EstimatedCost))
	sb.WriteString(row("Crew", rec.CrewSize))
	sb.WriteString(row("Special items", rec.SpecialItems))
	sb.WriteString(row("Notes", rec.Notes))
	if rec.DistanceMiles > 0 {
		sb.WriteString(row("Distance", fmt.Sprintf("%.1f miles", rec.DistanceMiles)))
	}
	sb.WriteString("</table>")
	return sb.String()
}

func (m *Mailer) BookingAlert(_ context.Context, rec models.BookingRecord, bookingID string) error {
	subject := fmt.Sprintf("New booking %s — %s", bookingID, rec.Name)
	body := fmt.Sprintf("<h2>New chat booking</h2><p>Booking ID: <b>%s</b></p>%s",
		bookingID, bookingRows(rec))
	return m.send(m.managerEmail, subject, body)
}

func (m *Mailer) LongDistanceAlert(_ context.Context, rec models.BookingRecord) error {
	subject := fmt.Sprintf("Long-distance lead — %s", rec.Name)
	body := fmt.Sprintf("<h2>Long-distance move needs a manager quote</h2>"+
		"<p>The customer has been told a manager will follow up personally.</p>%s",
		bookingRows(rec))
	return m.send(m.managerEmail, subject, body)
}

func (m *Mailer) CallRequestAlert(_ context.Context, req models.CallRequest) error {
	name := req.Name
	if name == "" {
		name = "Unknown customer"
	}
	subject := fmt.Sprintf("Call-back request — %s", name)
	body := fmt.Sprintf("<h2>Customer requested a call</h2>"+
		"<p><b>Name:</b> %s<br><b>Phone:</b> %s<br><b>When:</b> %s</p>",
		name, req.Phone, req.Timing)
	return m.send(m.managerEmail, subject, body)
}

func (m *Mailer) CustomerConfirmation(_ context.Context, rec models.BookingRecord, bookingID string) error {
	if rec.Email == "" {
		return nil
	}
	subject := "Your move with USF Moving Company is booked!"
	body := fmt.Sprintf("<h2>Thanks, %s!</h2>"+
		"<p>Your booking <b>%s</b> is confirmed for <b>%s</b> (%s).</p>"+
		"<p>We'll reach out the day before to confirm arrival time. "+
		"Reply to this email or call us if anything changes.</p>%s",
		rec.Name, bookingID, rec.MoveDate, rec.TimePreference, bookingRows(rec))
	return m.send(rec.Email, subject, body)
}

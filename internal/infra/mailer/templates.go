package mailer

import (
	"bytes"
	"html/template"

	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
)

var ErrUnknownTemplate = errs.New("unknown email template")

type emailTemplate struct {
	subject string
	body    *template.Template
}

const bookingBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>{{.heading}}</h2>
  <p>Booking reference: <strong>{{.booking_id}}</strong></p>
  <table cellpadding="6">
    <tr><td>Location</td><td>{{.address}}</td></tr>
    <tr><td>Date</td><td>{{.date}}</td></tr>
    <tr><td>Arrival</td><td>{{.arrival}}</td></tr>
    <tr><td>Leaving</td><td>{{.leaving}}</td></tr>
    <tr><td>Vehicle</td><td>{{.plate}}</td></tr>
    <tr><td>Amount paid</td><td>{{.amount}}</td></tr>
  </table>
  <p>Thank you for parking with SmartPark.</p>
</body>
</html>`

const violationBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>Violation reported</h2>
  <table cellpadding="6">
    <tr><td>Vehicle</td><td>{{.plate}}</td></tr>
    <tr><td>Location</td><td>{{.address}} ({{.location_id}})</td></tr>
    <tr><td>Date</td><td>{{.date}}</td></tr>
    <tr><td>Time</td><td>{{.time}}</td></tr>
    {{if .reported_by}}<tr><td>Reported by</td><td>{{.reported_by}}</td></tr>{{end}}
  </table>
  {{if .description}}<p>{{.description}}</p>{{end}}
</body>
</html>`

var templates = map[outbox.Template]emailTemplate{
	outbox.TemplateBookingConfirmed: {
		subject: "Your booking has been confirmed",
		body:    template.Must(template.New("booking_confirmed").Parse(bookingBody)),
	},
	outbox.TemplateBookingUpdated: {
		subject: "Your booking has been updated",
		body:    template.Must(template.New("booking_updated").Parse(bookingBody)),
	},
	outbox.TemplateViolationReported: {
		subject: "Violation reported",
		body:    template.Must(template.New("violation_reported").Parse(violationBody)),
	},
}

var headings = map[outbox.Template]string{
	outbox.TemplateBookingConfirmed: "Your booking is confirmed",
	outbox.TemplateBookingUpdated:   "Your booking has been updated",
}

// Render returns the subject and HTML body for msg.
func Render(msg outbox.EmailMessage) (string, string, error) {
	tmpl, ok := templates[msg.Template]
	if !ok {
		return "", "", errs.Wrapf(ErrUnknownTemplate, "template %q", msg.Template)
	}

	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	if h, ok := headings[msg.Template]; ok {
		data["heading"] = h
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", errs.Wrap(err, "failed to render email")
	}
	return tmpl.subject, buf.String(), nil
}

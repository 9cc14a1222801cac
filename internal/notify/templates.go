package notify

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
)

// Message is one rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

const defaultColor = "#9CA3AF"

var statusColors = map[string]string{
	models.StatusOpen:       "#FCD34D",
	models.StatusInProgress: "#60A5FA",
	models.StatusResolved:   "#34D399",
	models.StatusClosed:     "#9CA3AF",
}

var priorityColors = map[string]string{
	models.PriorityHigh:   "#EF4444",
	models.PriorityMedium: "#F59E0B",
	models.PriorityLow:    "#10B981",
}

func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return defaultColor
}

func PriorityColor(priority string) string {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return defaultColor
}

type eventCopy struct {
	subject string
	heading string
	action  string
}

var eventCopies = map[Event]eventCopy{
	TicketCreated:  {"New Ticket Created", "New Ticket Created", "created"},
	TicketAssigned: {"Ticket Assigned", "Ticket Updated", "assigned"},
	TicketResolved: {"Ticket Resolved", "Ticket Updated", "resolved"},
	TicketClosed:   {"Ticket Closed", "Ticket Updated", "closed"},
	NewComment:     {"New Comment on Ticket", "Ticket Updated", "commented"},
}

const textTemplates = `
{{- define "ticketCreated" -}}
A new ticket has been created:
Ticket Code: {{.T.Code}}
Title: {{.T.Title}}
Description: {{.T.Description}}
Priority: {{.T.Priority}}
Created by: {{.Actor.Username}}
{{end}}
{{- define "ticketAssigned" -}}
A ticket has been assigned to you:
Ticket Code: {{.T.Code}}
Title: {{.T.Title}}
Assigned to: {{.Actor.Username}}
{{end}}
{{- define "ticketResolved" -}}
A ticket has been resolved:
Ticket Code: {{.T.Code}}
Title: {{.T.Title}}
Resolved by: {{.Actor.Username}}
{{end}}
{{- define "ticketClosed" -}}
A ticket has been closed:
Ticket Code: {{.T.Code}}
Title: {{.T.Title}}
{{end}}
{{- define "newComment" -}}
A new comment has been added to the ticket:
Ticket Code: {{.T.Code}}
Title: {{.T.Title}}
Comment by: {{.Actor.Username}}
Comment: {{with .Comment}}{{.Text}}{{end}}
{{end}}`

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333333; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #1E40AF; color: white; padding: 20px; border-radius: 5px 5px 0 0; }
.content { background-color: #ffffff; padding: 20px; border: 1px solid #e5e7eb; border-radius: 0 0 5px 5px; }
.ticket-info { background-color: #f9fafb; padding: 15px; border-radius: 5px; margin: 20px 0; }
.badge { display: inline-block; padding: 8px 15px; border-radius: 4px; color: white; font-size: 14px; font-weight: 500; margin-right: 10px; }
.update-message { background-color: #f0f9ff; border-left: 4px solid #1E40AF; padding: 15px; margin: 20px 0; }
.divider { border-top: 1px solid #e5e7eb; margin: 20px 0; }
.button { display: inline-block; padding: 10px 20px; background-color: #1E40AF; color: white; text-decoration: none; border-radius: 5px; margin-top: 15px; }
.footer { text-align: center; margin-top: 20px; padding: 20px; font-size: 12px; color: #6b7280; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>{{.Heading}}</h1>
    <p>Ticket #{{.T.Code}}</p>
  </div>
  <div class="content">
    <p>Dear {{if .Actor.Username}}{{.Actor.Username}}{{else}}User{{end}},</p>
    <div class="update-message">
      <p><strong>Update:</strong> Ticket has been {{.Action}}</p>
    </div>
    <div class="ticket-info">
      <h2 style="margin-top: 0;">{{.T.Title}}</h2>
      <p>{{.T.Description}}</p>
      <div>
        <span class="badge" style="background-color: {{.StatusColor}}">{{.T.Status}}</span>
        <span class="badge" style="background-color: {{.PriorityColor}}">{{.T.Priority}}</span>
      </div>
      {{- with .Comment}}
      <div class="divider"></div>
      <p><strong>{{.CommentedBy}}:</strong> {{.Text}}</p>
      {{- end}}
      <div class="divider"></div>
      <p><strong>Created By:</strong> {{.T.CreatedBy}}</p>
      <p><strong>Created Date:</strong> {{.T.Date}}</p>
      {{- if .T.Assignee}}
      <p><strong>Assigned To:</strong> {{.T.Assignee}}</p>
      {{- end}}
    </div>
    {{- if .URL}}
    <div style="text-align: center;">
      <a href="{{.URL}}" class="button">View Ticket</a>
    </div>
    {{- end}}
  </div>
  <div class="footer">
    <p>This is an automated message from the Ticketing System.</p>
    <p>&copy; {{.Year}} Ticketing System</p>
  </div>
</div>
</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textTemplates))
	htmlTmpl = template.Must(template.New("email").Parse(htmlLayout))
)

type view struct {
	Heading       string
	Action        string
	T             models.Ticket
	Actor         Actor
	Comment       *models.Comment
	URL           string
	Year          int
	StatusColor   template.CSS
	PriorityColor template.CSS
}

// Render builds the email for n. appURL, when set, is used for the
// "View Ticket" link.
func Render(n Notification, appURL string) (Message, error) {
	ec, ok := eventCopies[n.Event]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown event %q", n.Event)
	}
	at := n.At
	if at.IsZero() {
		at = time.Now()
	}
	v := view{
		Heading:       ec.heading,
		Action:        ec.action,
		T:             n.Ticket,
		Actor:         n.Actor,
		Comment:       n.Comment,
		Year:          at.Year(),
		StatusColor:   template.CSS(StatusColor(n.Ticket.Status)),
		PriorityColor: template.CSS(PriorityColor(n.Ticket.Priority)),
	}
	if appURL != "" {
		v.URL = appURL + "/tickets/" + n.Ticket.Code
	}

	var text, html bytes.Buffer
	if err := textTmpl.ExecuteTemplate(&text, string(n.Event), v); err != nil {
		return Message{}, fmt.Errorf("notify: render text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return Message{}, fmt.Errorf("notify: render html: %w", err)
	}
	return Message{
		Subject: ec.subject + " - " + n.Ticket.Code,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

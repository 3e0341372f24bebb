package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"timed-quiz/internal/domain"
)

// SMTPConfig holds relay credentials. Empty username and password disable auth.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SMTPSender emails quiz results to the configured recipient.
type SMTPSender struct {
	config   SMTPConfig
	tmpl     *template.Template
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

const resultsTemplate = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .highlight { color: #4f46e5; font-weight: bold; }
        pre { background: #f5f5f5; padding: 12px; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Quiz Results</h2>
        <p><span class="highlight">{{.ParticipantName}}</span> ({{.ParticipantEmail}}) completed the quiz.</p>
        <p>Score: <span class="highlight">{{.ScoreSummary}}</span> ({{.PercentageText}})</p>
        <p>Submitted: {{.SubmittedAtText}}<br>Time taken: {{.ElapsedTimeText}}</p>
        <pre>{{.DetailsText}}</pre>
    </div>
</body>
</html>
`

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	t, err := template.New("quiz_results").Parse(resultsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &SMTPSender{config: cfg, tmpl: t, sendMail: smtp.SendMail}, nil
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Recipient == "" {
		return fmt.Errorf("no recipient configured")
	}
	msg, err := s.buildMessage(n)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.config.Username != "" || s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := s.sendMail(addr, auth, s.config.From, []string{n.Recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(n domain.Notification) ([]byte, error) {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, n); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", n.Recipient)
	fmt.Fprintf(&msg, "Subject: Quiz results for %s: %s (%s)\r\n", n.ParticipantName, n.ScoreSummary, n.PercentageText)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-ops/config"
	"github.com/Dosada05/tournament-ops/models"
	"github.com/go-mail/mail/v2"
)

const teamVerifiedSubject = "Your team registration is verified"

var teamVerifiedTemplate = template.Must(template.New("team_verified").Parse(`<p>Hello {{.Leader}},</p>
<p>Your team <strong>{{.TeamName}}</strong> has been verified and is now listed on the season leaderboard.</p>
<p>Room credentials are published shortly before each match. Good luck!</p>`))

func renderTeamVerified(team *models.Team) (string, error) {
	var body bytes.Buffer
	err := teamVerifiedTemplate.Execute(&body, struct {
		Leader   string
		TeamName string
	}{
		Leader:   team.Roster.Leader.Name,
		TeamName: team.TeamName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render team verified email: %w", err)
	}
	return body.String(), nil
}

// EmailService sends team notifications over SMTP.
type EmailService struct {
	dialer *mail.Dialer
	from   string
	logger *slog.Logger
}

// NewEmailService picks the SMTP sender when SMTP is configured and falls back
// to a sender that only logs.
func NewEmailService(cfg *config.Config, logger *slog.Logger) TeamNotifier {
	if !cfg.SMTPEnabled() {
		logger.Info("SMTP not configured, using log email service")
		return &LogEmailService{logger: logger}
	}

	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.Timeout = 10 * time.Second
	if cfg.SMTPPort == 465 {
		d.SSL = true
	}

	return &EmailService{dialer: d, from: cfg.SMTPFrom, logger: logger}
}

func (s *EmailService) SendTeamVerifiedEmail(ctx context.Context, team *models.Team) error {
	to := derefString(team.ContactEmail)
	if to == "" {
		return nil
	}
	body, err := renderTeamVerified(team)
	if err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", teamVerifiedSubject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.InfoContext(ctx, "team verified email sent", slog.String("team_id", team.ID))
	return nil
}

// LogEmailService writes messages to the log instead of sending them.
type LogEmailService struct {
	logger *slog.Logger
}

func (s *LogEmailService) SendTeamVerifiedEmail(ctx context.Context, team *models.Team) error {
	body, err := renderTeamVerified(team)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email",
		slog.String("to", derefString(team.ContactEmail)),
		slog.String("subject", teamVerifiedSubject),
		slog.String("body", body))
	return nil
}

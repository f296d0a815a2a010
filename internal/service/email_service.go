package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends progress summary emails via Amazon SES
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates the email service. With no from address
// configured the service is disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSummaryEmail emails a user their current progress summary
func (s *EmailService) SendSummaryEmail(ctx context.Context, toEmail, toName string, summary *Summary) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): summary to %s", toEmail)
		return nil
	}

	subject := "Your Niyam Progress Summary"

	var week strings.Builder
	for _, day := range summary.Last7Days {
		fmt.Fprintf(&week, "<tr><td>%s (%s)</td><td style=\"text-align:right;\">%d</td></tr>\n", day.DateKey, day.Label, day.Points)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #b45309; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		td { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Niyam Progress</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Group: <strong>%s</strong></p>
			<p>All-time points: <strong>%d</strong><br>
			Current streak: <strong>%d days</strong></p>
			<p>Last 7 days:</p>
			<table>
%s			</table>
			<p>Keep going!</p>
		</div>
		<div class="footer">
			<p>This is an automated email. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, summary.AgeGroup, summary.AllTimeTotal, summary.Streak, week.String())

	var textWeek strings.Builder
	for _, day := range summary.Last7Days {
		fmt.Fprintf(&textWeek, "  %s (%s): %d\n", day.DateKey, day.Label, day.Points)
	}
	textBody := fmt.Sprintf(`Hi %s,

Group: %s
All-time points: %d
Current streak: %d days

Last 7 days:
%s
Keep going!

---
This is an automated email. Please do not reply.
`, toName, summary.AgeGroup, summary.AllTimeTotal, summary.Streak, textWeek.String())

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message id: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

package probe

const (
	KeySMTPHost = "SMTP_HOST"
	KeySMTPPort = "SMTP_PORT"
	KeySMTPUser = "SMTP_USER"
	KeySMTPPass = "SMTP_PASS"

	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = "587"
)

// SMTPService is the mail relay used for verification and order emails.
type SMTPService struct{ BaseService }

var _ Service = (*SMTPService)(nil)

func (s *SMTPService) Name() string        { return "smtp" }
func (s *SMTPService) DisplayName() string { return "SMTP" }

func (s *SMTPService) Keys() []KeySpec {
	return []KeySpec{
		{Key: KeySMTPHost, Label: "Enter SMTP Host", Default: DefaultSMTPHost, Validate: ValidHost},
		{Key: KeySMTPPort, Label: "Enter SMTP Port", Default: DefaultSMTPPort, Validate: ValidPort},
		{Key: KeySMTPUser, Label: "Enter SMTP Email"},
		{Key: KeySMTPPass, Label: "Enter SMTP Password/App Password", Secret: true},
	}
}

func (s *SMTPService) Help() []string {
	return []string{
		"For Gmail users:",
		"1. Enable 2-Step Verification",
		"2. Generate App Password: https://myaccount.google.com/apppasswords",
		"3. Use the generated 16-character password",
	}
}

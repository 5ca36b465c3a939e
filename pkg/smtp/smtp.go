package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
)

type ItfSmtp interface {
	SendUploadLink(userEmail string, uploadURL string, applianceType string) error
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	host string
	addr string
}

func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{auth: auth, mail: mail, host: host, addr: host + ":" + port}
}

func (s *smtp) SendUploadLink(userEmail string, uploadURL string, applianceType string) error {
	to := []string{userEmail}

	subject := "Upload a photo of your appliance"
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"You are on a support call with us about your %s. Please upload a photo of the "+
			"appliance (the error display or the problem area) using this link:\r\n\r\n%s\r\n\r\n"+
			"The link is valid for 24 hours and can be used once. Keep the call going, we will "+
			"walk you through the next steps as soon as the photo arrives.\r\n",
		applianceType, uploadURL)

	message := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", userEmail, subject, body))

	err := smtpPkg.SendMail(s.addr, s.auth, s.mail, to, message)
	if err != nil {
		return err
	}

	return nil
}

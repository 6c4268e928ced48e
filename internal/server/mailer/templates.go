package mailer

import (
	"bytes"
	"html/template"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const verificationSubject = "Email Verification Code"

var verificationTmpl = template.Must(template.New("verification").Parse(
	`<p>{{.Intro}}</p><p>Your verification code is: <strong>{{.Code}}</strong></p>` +
		`<p>The code expires in {{.TTL}}.</p>`))

// VerificationEmail is the message sent for a verification session.
type VerificationEmail struct {
	To      string
	Purpose string
	Code    string
	TTL     string
}

// Render returns subject and HTML body.
func (v VerificationEmail) Render() (string, string, error) {
	intro := "Welcome! Confirm your email address to finish signing up."
	if v.Purpose == common.PurposeResetPassword {
		intro = "We received a request to reset your password."
	}

	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct {
		Intro, Code, TTL string
	}{intro, v.Code, v.TTL})
	if err != nil {
		return "", "", err
	}
	return verificationSubject, buf.String(), nil
}

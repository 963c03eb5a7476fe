package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

const (
	SubjectVerification  = "Sign up succeeded and Account validation"
	SubjectPasswordReset = "Password Reset"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Renderer turns account notifications into HTML messages. Links arrive
// fully built from the auth flows.
type Renderer struct {
	appName string
	from    string
}

func NewRenderer(appName, from string) *Renderer {
	if from == "" {
		from = "no-reply@" + appName + ".com"
	}
	return &Renderer{appName: appName, from: from}
}

func (r *Renderer) Verification(name, email, link string) (Message, error) {
	body, err := r.render("verification.html", map[string]any{
		"AppName": r.appName,
		"Name":    name,
		"Link":    link,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindVerification, From: r.from, To: email, Subject: SubjectVerification, HTML: body}, nil
}

func (r *Renderer) PasswordReset(name, email, link string, expiresAt time.Time) (Message, error) {
	body, err := r.render("password_reset.html", map[string]any{
		"AppName":   r.appName,
		"Name":      name,
		"Link":      link,
		"ExpiresAt": expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindPasswordReset, From: r.from, To: email, Subject: SubjectPasswordReset, HTML: body}, nil
}

func (r *Renderer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

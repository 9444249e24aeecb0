package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<html>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; padding: 20px;">
	<div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; padding: 24px;">
		<h2 style="color: #667eea;">PrintQ</h2>
		{{template "body" .}}
		<p style="color: #718096; font-size: 12px;">This is an automated message from PrintQ campus printing.</p>
	</div>
</body>
</html>{{end}}`

var bodies = map[Kind]string{
	KindAccountCreated: `{{define "body"}}
		<p>Hello {{index . "username"}},</p>
		<p>Your PrintQ account is ready. Top up your wallet to start printing.</p>
	{{end}}`,
	KindJobSubmitted: `{{define "body"}}
		<p>Your print job <strong>{{index . "file_name"}}</strong> was submitted and is waiting for approval.</p>
		<ul>
			<li>Job: {{index . "job_id"}}</li>
			<li>Pages: {{index . "pages"}} x {{index . "copies"}} copies</li>
			<li>Charged: {{index . "cost"}}</li>
		</ul>
		<p>Your pickup PIN is <strong>{{index . "pickup_pin"}}</strong>.</p>
	{{end}}`,
	KindJobApproved: `{{define "body"}}
		<p>Your print job <strong>{{index . "file_name"}}</strong> was approved.</p>
		<p>It will be printed on {{index . "printer_name"}} ({{index . "printer_location"}}).</p>
		<p>Pickup PIN: <strong>{{index . "pickup_pin"}}</strong></p>
	{{end}}`,
	KindJobCompleted: `{{define "body"}}
		<p>Your print job <strong>{{index . "file_name"}}</strong> is ready for pickup at {{index . "printer_location"}}.</p>
		<p>Pickup PIN: <strong>{{index . "pickup_pin"}}</strong></p>
		<p>Eco points earned: {{index . "eco_points"}}</p>
	{{end}}`,
	KindJobRejected: `{{define "body"}}
		<p>Your print job <strong>{{index . "file_name"}}</strong> was rejected.</p>
		<p>Reason: {{index . "reason"}}</p>
		<p>{{index . "refund"}} has been refunded to your wallet.</p>
	{{end}}`,
	KindLowBalance: `{{define "body"}}
		<p>Hello {{index . "username"}},</p>
		<p>Your wallet balance is {{index . "balance"}}, below {{index . "threshold"}}.</p>
		<p>Top up to keep printing without interruption.</p>
	{{end}}`,
}

// Templates renders notification bodies
type Templates struct {
	byKind map[Kind]*template.Template
}

// ParseTemplates compiles the template of every kind
func ParseTemplates() (*Templates, error) {
	t := &Templates{byKind: make(map[Kind]*template.Template, len(bodies))}
	for kind, body := range bodies {
		tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := tmpl.Parse(body); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		t.byKind[kind] = tmpl
	}
	return t, nil
}

// Render produces the HTML body for n
func (t *Templates) Render(n Notification) (string, error) {
	tmpl, ok := t.byKind[n.Kind()]
	if !ok {
		return "", fmt.Errorf("no template for %s", n.Kind())
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", n.Fields()); err != nil {
		return "", fmt.Errorf("render %s: %w", n.Kind(), err)
	}
	return buf.String(), nil
}

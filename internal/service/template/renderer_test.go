package template_test

import (
	"strings"
	"testing"

	"github.com/ignite/listpilot/internal/domain"
	"github.com/ignite/listpilot/internal/service/template"
)

func testSubscriber() *domain.Subscriber {
	return &domain.Subscriber{
		ID:    "s1",
		Email: "jane@example.com",
		Name:  "Jane",
		Attribs: map[string]any{
			"plan": "pro",
		},
	}
}

func TestRenderCampaignBody(t *testing.T) {
	r := template.NewRenderer()
	c := &domain.Campaign{
		ID:      "c1",
		Name:    "Welcome",
		Subject: "Hi",
		Body:    "Hello {{ subscriber.name }}, you are on the {{ subscriber.plan }} plan.",
	}
	out, err := r.RenderCampaign(c, nil, testSubscriber())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello Jane, you are on the pro plan." {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderCampaignWithTemplateSlot(t *testing.T) {
	r := template.NewRenderer()
	c := &domain.Campaign{ID: "c1", Subject: "Hi", Body: "body for {{ subscriber.email }}"}
	tpl := &domain.Template{ID: "t1", Body: "<header/>{{ content }}<footer/>"}

	out, err := r.RenderCampaign(c, tpl, testSubscriber())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<header/>body for jane@example.com<footer/>"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestRenderDefaultFilter(t *testing.T) {
	r := template.NewRenderer()
	c := &domain.Campaign{ID: "c1", Subject: "Hi", Body: `Hello {{ subscriber.nickname | default: "there" }}`}
	out, err := r.RenderCampaign(c, nil, testSubscriber())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello there" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderSubject(t *testing.T) {
	r := template.NewRenderer()
	c := &domain.Campaign{ID: "c1", Subject: "{{ subscriber.name }}, your invoice"}
	out, err := r.RenderSubject(c, testSubscriber())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Jane, your invoice" {
		t.Fatalf("subject = %q", out)
	}

	c.Subject = "plain subject"
	out, _ = r.RenderSubject(c, testSubscriber())
	if out != "plain subject" {
		t.Fatalf("plain subject changed: %q", out)
	}
}

func TestRenderBadTemplate(t *testing.T) {
	r := template.NewRenderer()
	c := &domain.Campaign{ID: "c1", Subject: "Hi", Body: "{% if %}"}
	if _, err := r.RenderCampaign(c, nil, testSubscriber()); err == nil {
		t.Fatal("expected parse error")
	} else if !strings.Contains(err.Error(), "c1") {
		t.Fatalf("error should name the campaign: %v", err)
	}
}

func TestTemplateServiceValidation(t *testing.T) {
	// Creating templates with unparsable Liquid must fail up front.
	r := template.NewRenderer()
	if _, err := r.Render("{% endif %}", nil); err == nil {
		t.Fatal("expected parse error")
	}
}

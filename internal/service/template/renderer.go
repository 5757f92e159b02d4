package template

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/listpilot/internal/domain"
)

// Renderer renders campaign bodies and templates with Liquid. Parsed
// templates are cached by content hash, so repeated renders of the same
// campaign across a large audience parse once.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // md5(source) -> *liquid.Template
}

// NewRenderer creates a renderer with the standard filters plus default.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// {{ subscriber.name | default: "there" }}
	engine.RegisterFilter("default", func(value any, defaultVal string) any {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	return &Renderer{engine: engine}
}

// Render expands one Liquid source against the given bindings.
func (r *Renderer) Render(source string, bindings map[string]any) (string, error) {
	key := fmt.Sprintf("%x", md5.Sum([]byte(source)))
	var tpl *liquid.Template
	if cached, ok := r.cache.Load(key); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(source)
		if err != nil {
			return "", fmt.Errorf("parse template: %w", err)
		}
		r.cache.Store(key, parsed)
		tpl = parsed
	}
	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// RenderCampaign produces the final message body for one recipient: the
// campaign body is rendered first, then slotted into the template's
// {{ content }} placeholder when the campaign uses one.
func (r *Renderer) RenderCampaign(c *domain.Campaign, tpl *domain.Template, sub *domain.Subscriber) (string, error) {
	bindings := campaignBindings(c, sub)

	body, err := r.Render(c.Body, bindings)
	if err != nil {
		return "", fmt.Errorf("campaign %s body: %w", c.ID, err)
	}
	if tpl == nil {
		return body, nil
	}

	bindings["content"] = body
	out, err := r.Render(tpl.Body, bindings)
	if err != nil {
		return "", fmt.Errorf("campaign %s template %s: %w", c.ID, tpl.ID, err)
	}
	return out, nil
}

// RenderSubject expands Liquid in the campaign subject line.
func (r *Renderer) RenderSubject(c *domain.Campaign, sub *domain.Subscriber) (string, error) {
	if !strings.Contains(c.Subject, "{{") && !strings.Contains(c.Subject, "{%") {
		return c.Subject, nil
	}
	return r.Render(c.Subject, campaignBindings(c, sub))
}

func campaignBindings(c *domain.Campaign, sub *domain.Subscriber) map[string]any {
	subscriber := map[string]any{
		"id":    sub.ID,
		"email": sub.Email,
		"name":  sub.Name,
	}
	for k, v := range sub.Attribs {
		if _, taken := subscriber[k]; !taken {
			subscriber[k] = v
		}
	}
	return map[string]any{
		"subscriber": subscriber,
		"campaign": map[string]any{
			"id":      c.ID,
			"name":    c.Name,
			"subject": c.Subject,
		},
	}
}

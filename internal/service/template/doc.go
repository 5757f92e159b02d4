// Package template implements the campaign template registry. Templates
// hold reusable Liquid bodies that campaigns may reference; rendering
// itself lives in internal/template (the render package).
package template

package render

import (
	"strings"
	"testing"
)

func TestRenderInvite(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := engine.Render("invite.tmpl", map[string]string{
		"Username": "alice",
		"TeamName": "platform",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, `"platform"`) {
		t.Fatalf("rendered template missing fields: %q", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Render("nope.tmpl", nil); err == nil {
		t.Fatal("unknown template should error")
	}
}

func TestRenderNilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.Render("invite.tmpl", nil); err == nil {
		t.Fatal("nil engine should error")
	}
}

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentAttr(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	l.Info("hello")
	if !strings.Contains(buf.String(), "component=app") {
		t.Fatalf("expected default component attr, got %q", buf.String())
	}

	buf.Reset()
	l.WithComponent(ComponentStore).Info("loaded")
	if !strings.Contains(buf.String(), "component=store") {
		t.Fatalf("expected store component attr, got %q", buf.String())
	}
}

func TestComponentName(t *testing.T) {
	l := New(Config{Component: ComponentHTTP})
	if l.Component() != ComponentHTTP {
		t.Fatalf("expected %q, got %q", ComponentHTTP, l.Component())
	}
	if got := l.WithComponent(ComponentEvents).Component(); got != ComponentEvents {
		t.Fatalf("expected %q, got %q", ComponentEvents, got)
	}
}

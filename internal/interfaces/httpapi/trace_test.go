package httpapi

import (
	"context"
	"testing"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "game handler", in: "httpapi.Handler.PublishGame", want: true},
		{name: "board handler", in: "httpapi.Handler.CreateBoard", want: true},
		{name: "error path", in: "httpapi.writeError", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "encoding helper", in: "httpapi.writeJSON", want: false},
		{name: "error mapping", in: "httpapi.mapError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpan_WithoutParentIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetActiveGame")
	if got != ctx {
		t.Fatalf("expected the context to be returned unchanged")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a no-op span without a parent")
	}
}

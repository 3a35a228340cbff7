package requestid

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := NewContext(context.Background(), "req-42")

	if got := FromContext(ctx); got != "req-42" {
		t.Errorf("FromContext() = %q, want %q", got, "req-42")
	}
	if got := Attr(ctx).Value.String(); got != "req-42" {
		t.Errorf("Attr() value = %q, want %q", got, "req-42")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext() = %q, want empty", got)
	}
}

package net

import (
	"context"
	"testing"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID = %q", got)
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("empty ctx should have no id")
	}
	if WithRequestID(context.Background(), "") != context.Background() {
		t.Fatalf("empty id should not wrap ctx")
	}
}

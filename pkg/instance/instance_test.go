package instance

import "testing"

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("PRICINGDEF_INSTANCE_ID", "api-7")
	if got := GetID(); got != "api-7" {
		t.Fatalf("expected api-7, got %q", got)
	}

	t.Setenv("PRICINGDEF_INSTANCE_ID", "")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected web.1, got %q", got)
	}
}

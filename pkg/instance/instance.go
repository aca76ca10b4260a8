package instance

import (
	"os"

	"github.com/angelmondragon/pricingdef/pkg/env"
)

// GetID identifies this process in logs: PRICINGDEF_INSTANCE_ID, then the
// platform's DYNO name, then the hostname.
func GetID() string {
	if id := env.Get("PRICINGDEF_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}

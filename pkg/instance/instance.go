package instance

import "os"

// GetID returns the process instance identifier used in log fields.
func GetID() string {
	if id := os.Getenv("STOCKROOM_INSTANCE_ID"); id != "" {
		return id
	}
	return "api-0"
}

package version

import "fmt"

const (
	major = 0
	minor = 2
	patch = 0
)

// String returns the checkoutd version as a dotted string.
func String() string {
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// Package counterfact provides the version information for counterfact.
package counterfact

// Version is the current version of counterfact.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

package version

// Version is the build version, set with
// -ldflags "-X github.com/MLEngineer1/smc-cash-cow/internal/version.Version=v1.2.3".
var Version = "dev"

// GetVersion returns the build version.
func GetVersion() string {
	return Version
}

package version

import "fmt"

const product = "edenhttp"

// Set via ldflags at build time.
var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

// Info is the build description served by the /version/ route.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
}

func Current() Info {
	return Info{Version: Version, Commit: Commit, Built: BuildDate}
}

func GetVersion() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", product, Version, Commit, BuildDate)
}

func GetShortVersion() string {
	return Version
}

// ServerHeader is the product token sent in the Server response header. An
// unset version leaves the bare product name.
func ServerHeader() string {
	if Version == "" {
		return product
	}
	return product + "/" + Version
}

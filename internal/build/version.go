package build

// Set at link time:
//
//	go build -ldflags "-X github.com/rohmanhakim/pjax-nav/internal/build.Version=1.2.0 \
//	  -X github.com/rohmanhakim/pjax-nav/internal/build.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent is the default User-Agent header sent by the fetcher.
func UserAgent() string {
	return "pjax-nav/" + Version
}

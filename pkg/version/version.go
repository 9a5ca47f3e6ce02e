package version

// Set at build time with -ldflags "-X github.com/kyleterry/vhttp/pkg/version.Version=..."
var (
	Version = "0.1.0"
	Commit  = "dev"
)

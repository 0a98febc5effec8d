package version

// Set by -ldflags "-X github.com/sagan/naimeta/version.Version=..." at build time.
var (
	Version = "dev"
	Commit  = ""
)

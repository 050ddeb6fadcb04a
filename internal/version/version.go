package version

// Overridden at build time with -ldflags "-X github.com/aabid-khan7222/myschool-sub002/internal/version.<Name>=<value>".
var (
	Version       = "dev"
	Mode          = "development"
	DefaultAPIURL = "http://localhost:5000/api"
)

const ModeProduction = "production"

func IsProduction(mode string) bool {
	return mode == ModeProduction
}

package config

// Version is the application version, overridden at build time via ldflags:
//
//	go build -ldflags "-X 'github.com/profilarr/profilarr/internal/config.Version=v1.2.3'"
var Version = "0.0.1-dev"

// Package buildinfo carries version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/varsilias/ollama-chat-relay/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
)

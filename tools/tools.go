//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for the portal with DEV=true template reloading
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks/identity_transport_mock.go
//   Run: go generate ./internal/mocks
//   Version: pinned in the go:generate directive (go.uber.org/mock v0.6.0)

//go:build mage

// Package main provides build targets for stockpilot using Mage.
//
// Usage:
//
//	mage generate     Regenerate templ components
//	mage build        Compile stockpilot-server and stockctl to bin/
//	mage test         Run all tests
//	mage cover        Run tests with a coverage profile
//	mage lint         Run golangci-lint
//	mage run          Build and start the web server
//	mage clean        Remove build artifacts
//	mage install      Install stockctl to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryDir    = "bin"
	coverProfile = "coverage.out"
)

// binaries maps output names to their main packages.
var binaries = map[string]string{
	"stockpilot-server": "./cmd/server",
	"stockctl":          "./cmd/stockctl",
}

// Generate regenerates *_templ.go from the .templ sources.
func Generate() error {
	return sh.RunV("templ", "generate", "-path", "internal/web/templates")
}

// Build compiles every binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	for name, pkg := range binaries {
		if err := sh.RunV("go", "build", "-o", filepath.Join(binaryDir, name), pkg); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
	}
	return nil
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Cover runs all tests and prints per-function coverage.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverProfile)
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Run builds and starts the web server using .env from the working directory.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, "stockpilot-server"))
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.Rm(coverProfile)
}

// Install installs stockctl to GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", binaries["stockctl"])
}

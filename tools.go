//go:build tools
// +build tools

// Package tools tracks code generators (mockgen) as module dependencies so
// `go generate` works on a fresh checkout.
package cipherchat

import (
	_ "go.uber.org/mock/mockgen"
)

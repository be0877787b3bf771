//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen, invoked through
// the go:generate directives of the contract and repositories packages,
// pinned in go.mod.
package direct_chat

import (
	_ "go.uber.org/mock/mockgen"
)

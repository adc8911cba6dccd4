// Package types provides the core data model shared across the foundry.
// This package has ZERO dependencies on other foundry packages to avoid
// circular imports. All other packages should import types from here.
package types

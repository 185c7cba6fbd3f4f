// Package textutil provides text processing utilities for filename
// sanitization and display truncation.
//
// The primary use cases are:
//   - Sanitizing titles for safe filesystem use
//   - Building lowercase tokens for directory and artifact names
//   - Extracting and shortening sentences for overlay text
package textutil

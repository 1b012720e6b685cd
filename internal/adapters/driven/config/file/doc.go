// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with dot-notation keys
//
// The package also maps configuration keys onto the scoring defaults, so
// ranking and chunking thresholds can be tuned per installation.
package file

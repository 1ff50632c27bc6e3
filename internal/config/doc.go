// Package config handles loading and saving the shelf configuration file.
//
// # Overview
//
// This package reads shelf's TOML configuration to discover the Brickery
// API endpoint, the bearer token, and the background refresh cadence.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/shelf/config.toml
//   - API base: http://127.0.0.1:8000
//   - Token: empty (browsing works; personal collections need a token).
//     When the file carries no token, the SHELF_TOKEN environment variable
//     is consulted as a fallback
//   - Refresh interval: 30s, clamped to a 5s minimum
//
// # TOML Format
//
// Example config.toml:
//
//	api_base = "https://brickery.example.com"
//	token = "..."
//	refresh_seconds = 30
//
// All fields are optional. Tilde expansion is performed on the config path.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// Missing config files are NOT an error; defaults are used instead, so
// shelf works out-of-the-box against a local API.
//
// # Persistence
//
// Save writes the config back out, creating parent directories as needed.
// The file is written mode 0600 because it carries the bearer token.
package config

// Package file loads and persists askdocs configuration from a TOML
// file on the local filesystem. The configuration is typed: values are
// validated before the application starts, so a misconfigured provider
// fails at startup instead of mid-query.
package file

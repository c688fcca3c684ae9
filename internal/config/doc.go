// Package config loads the CareLink client configuration from environment
// variables, command-line flags, and an optional JSON file, merging the
// sources in priority order and applying built-in defaults last.
//
// [GetClientConfig] is the entry point used by the application; it returns a
// validated [ClientConfig] view cut from the merged [StructuredConfig].
package config

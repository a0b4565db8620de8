package config

import "os"

// ExpandEnv expands environment variables in YAML content. Supports both
// ${VAR} and $VAR shell-style syntax via the standard library, matching
// pkg/config/envexpand.go's behavior.
//
// Missing variables expand to empty string; the Validator pass is
// responsible for catching required fields left empty by a missing secret.
func ExpandEnv(data []byte) []byte {
	return []byte(os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	}))
}

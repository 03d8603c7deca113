package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// EnvAPIKey is the environment variable consulted first for the OpenAI key.
const EnvAPIKey = "OPENAI_API_KEY"

// CredentialsFileName is the fallback credentials file probed under the
// storage root.
const CredentialsFileName = "credentials.json"

// Credentials holds the OpenAI API key. It is resolved once at process start
// and passed explicitly to the components that need it; a rotated key is not
// picked up without a restart.
type Credentials struct {
	APIKey string `json:"api_key"`
}

// Present reports whether an API key was resolved.
func (c Credentials) Present() bool {
	return c.APIKey != ""
}

// String masks the key so Credentials never leak through logs.
func (c Credentials) String() string {
	if c.APIKey == "" {
		return "Credentials{}"
	}
	return "Credentials{APIKey:***}"
}

// MarshalJSON masks the key in any serialized form.
func (c Credentials) MarshalJSON() ([]byte, error) {
	type masked struct {
		APIKey string `json:"api_key,omitempty"`
	}
	out := masked{}
	if c.APIKey != "" {
		out.APIKey = "***"
	}
	return json.Marshal(out)
}

// ResolveCredentials resolves the OpenAI API key: the OPENAI_API_KEY
// environment variable is preferred, falling back to a credentials.json file
// under root. A missing file is not an error; the returned Credentials are
// simply empty and the generation tool reports the failure per call.
func ResolveCredentials(root string) (Credentials, error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return Credentials{APIKey: key}, nil
	}

	path := filepath.Join(root, CredentialsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return creds, nil
}

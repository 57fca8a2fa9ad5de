package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuth scopes for Google APIs
const (
	ScopeSheetsReadonly = "https://www.googleapis.com/auth/spreadsheets.readonly"
	ScopeGmailSend      = "https://www.googleapis.com/auth/gmail.send"
)

// requiredScopes returns all scopes required by the application
func requiredScopes() []string {
	return []string{
		ScopeSheetsReadonly,
		ScopeGmailSend,
	}
}

// credentialType reads the "type" field of a Google credentials file
func credentialType(data []byte) (string, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return "", fmt.Errorf("failed to parse credentials: %w", err)
	}
	if header.Type == "" {
		return "", fmt.Errorf("credentials file has no type field")
	}
	return header.Type, nil
}

// NewHTTPClient builds an authenticated client from Google credentials JSON.
//
// Service account keys impersonate subject through domain-wide delegation, which is
// how the Gmail sender address is selected. Authorized user credentials (as written
// by gcloud auth application-default login) are used as-is.
func NewHTTPClient(ctx context.Context, data []byte, subject string) (*http.Client, error) {
	kind, err := credentialType(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "service_account":
		jwtConfig, err := google.JWTConfigFromJSON(data, requiredScopes()...)
		if err != nil {
			return nil, fmt.Errorf("failed to create service account config: %w", err)
		}
		jwtConfig.Subject = subject
		return jwtConfig.Client(ctx), nil

	case "authorized_user":
		creds, err := google.CredentialsFromJSON(ctx, data, requiredScopes()...)
		if err != nil {
			return nil, fmt.Errorf("failed to load user credentials: %w", err)
		}
		return oauth2.NewClient(ctx, creds.TokenSource), nil
	}

	return nil, fmt.Errorf("unsupported credentials type %q", kind)
}

// NewHTTPClientFromFile reads a credentials file and builds an authenticated client
func NewHTTPClientFromFile(ctx context.Context, path, subject string) (*http.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return NewHTTPClient(ctx, data, subject)
}

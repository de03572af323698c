package clientsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where `clientdesk serve` listens by default.
const DefaultBaseURL = "http://localhost:8080"

// SDKClient calls the clientdesk REST API.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10 second request timeout.
func NewSDKClient(baseURL string) *SDKClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

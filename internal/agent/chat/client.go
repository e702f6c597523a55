// internal/agent/chat/client.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/agent/stream"
	apperrors "storefront/internal/common/errors"
	commonhttp "storefront/internal/common/http"
	"storefront/internal/common/logger"
	"storefront/internal/common/metrics"
)

const (
	ComponentName = "agent-chat"

	compatibilityMode = "ai-sdk-4"
	maxErrorBody      = 64 * 1024
)

// Client sends one user message to the agent and decodes the streamed completion.
type Client struct {
	config  *Config
	http    *commonhttp.Client
	decoder *stream.Decoder
	logger  logger.Logger
}

func NewClient(config *Config, decoder *stream.Decoder, log logger.Logger) *Client {
	if config == nil {
		config = LoadConfig()
	}
	return &Client{
		config:  config,
		http:    commonhttp.NewClient(config.Timeout),
		decoder: decoder,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
			"agentId":   config.AgentID,
		}),
	}
}

func (c *Client) completionsURL() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.algolia.net", c.config.AppID)
	}
	return fmt.Sprintf("%s/agent-studio/1/agents/%s/completions?compatibilityMode=%s",
		base, url.PathEscape(c.config.AgentID), compatibilityMode)
}

// Complete returns CONFIGURATION_MISSING before any request when credentials are blank,
// *UpstreamError for a non-2xx answer and AGENT_REQUEST_FAILED for transport failures.
func (c *Client) Complete(ctx context.Context, text string) (stream.Reply, error) {
	if err := c.config.Validate(); err != nil {
		return stream.Reply{}, err
	}

	metrics.ChatRequestsActive.Inc()
	defer metrics.ChatRequestsActive.Dec()

	body := completionRequest{
		Messages: []message{{ID: uuid.NewString(), Role: "user", Content: text}},
	}
	headers := map[string]string{
		"x-algolia-application-id": c.config.AppID,
		"x-algolia-api-key":        c.config.APIKey,
	}

	resp, err := c.http.PostJSON(ctx, c.completionsURL(), headers, body)
	if err != nil {
		return stream.Reply{}, apperrors.NewAgentRequestFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &UpstreamError{Status: resp.StatusCode, Details: readDetails(resp.Body)}
		c.logger.Error("agent returned an error", map[string]interface{}{
			"status":  upstream.Status,
			"details": upstream.Details,
		})
		return stream.Reply{}, upstream
	}

	reply := c.decoder.DecodeReader(resp.Body)
	c.logger.Info("agent reply decoded", map[string]interface{}{
		"textLength": len(reply.Text),
		"products":   len(reply.Products),
	})
	return reply, nil
}

// readDetails keeps a JSON error body as structured data and anything else as text.
func readDetails(r io.Reader) interface{} {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var details interface{}
	if err := json.Unmarshal(raw, &details); err == nil {
		return details
	}
	return strings.TrimSpace(string(raw))
}

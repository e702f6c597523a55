// internal/agent/stream/models.go
package stream

import "encoding/json"

// Hit is one product record cited by the agent, kept as the raw JSON object the
// index returned.
type Hit = json.RawMessage

// Frame is one classified line of an agent response.
type Frame interface {
	Kind() string
}

// TextDelta is a fragment of the assistant's answer (marker "0").
type TextDelta struct {
	Text string
}

// ToolResult carries the hits returned by a search tool call (marker "a").
// Dropped counts array elements that were not JSON objects.
type ToolResult struct {
	Hits    []Hit
	Dropped int
}

// Unrecognized is any non-empty line the decoder cannot use.
type Unrecognized struct {
	Marker  string
	Payload string
	Reason  string
}

func (TextDelta) Kind() string    { return KindText }
func (ToolResult) Kind() string   { return KindTool }
func (Unrecognized) Kind() string { return KindUnrecognized }

const (
	KindText         = "text"
	KindTool         = "tool_result"
	KindUnrecognized = "unrecognized"

	markerText = "0"
	markerTool = "a"
)

// Reply is the decoded agent response. Products is never nil.
type Reply struct {
	Text     string `json:"text"`
	Products []Hit  `json:"products"`
}

type toolPayload struct {
	Result *struct {
		Hits []Hit `json:"hits"`
	} `json:"result"`
}

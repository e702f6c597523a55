// internal/agent/stream/classifier.go
package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Classify tags one line by its leading marker. Blank lines are not frames.
func Classify(line string) (Frame, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	marker, payload, found := strings.Cut(line, ":")
	if !found {
		return Unrecognized{Payload: line, Reason: "no marker"}, true
	}

	switch marker {
	case markerText:
		var text string
		if err := json.Unmarshal([]byte(payload), &text); err != nil {
			return Unrecognized{Marker: marker, Payload: payload, Reason: "invalid text payload: " + err.Error()}, true
		}
		return TextDelta{Text: text}, true

	case markerTool:
		var tool toolPayload
		if err := json.Unmarshal([]byte(payload), &tool); err != nil {
			return Unrecognized{Marker: marker, Payload: payload, Reason: "invalid tool payload: " + err.Error()}, true
		}
		if tool.Result == nil {
			return ToolResult{}, true
		}
		return objectHits(tool.Result.Hits), true

	default:
		return Unrecognized{Marker: marker, Payload: payload, Reason: "unknown marker"}, true
	}
}

// objectHits keeps the elements that are JSON objects, byte for byte.
func objectHits(raw []Hit) ToolResult {
	var result ToolResult
	for _, h := range raw {
		if trimmed := bytes.TrimSpace(h); len(trimmed) > 0 && trimmed[0] == '{' {
			result.Hits = append(result.Hits, h)
			continue
		}
		result.Dropped++
	}
	return result
}

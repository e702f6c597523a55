// internal/agent/stream/decoder.go
package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
	"storefront/internal/common/metrics"
)

const ComponentName = "stream-decoder"

var ErrUnusableFrame = errors.New("UNUSABLE_FRAME")

// Decoder turns an agent completion body into a Reply. It never fails: malformed lines
// are skipped and a truncated body yields what was decoded before the cut.
type Decoder struct {
	logger logger.Logger
}

func NewDecoder(log logger.Logger) *Decoder {
	return &Decoder{
		logger: log.With(map[string]interface{}{"component": ComponentName}),
	}
}

func (d *Decoder) Decode(body string) Reply {
	return d.DecodeReader(strings.NewReader(body))
}

func (d *Decoder) DecodeReader(r io.Reader) Reply {
	var agg Aggregator
	lines := 0

	splitter := NewSplitter(r)
	for splitter.Next() {
		lines++
		frame, ok := Classify(splitter.Line())
		if !ok {
			continue
		}
		metrics.StreamFrames.WithLabelValues(frame.Kind()).Inc()

		if u, isUnrecognized := frame.(Unrecognized); isUnrecognized {
			err := apperrors.NewDecodeFrameFailedError(u.Marker, fmt.Errorf("%w: %s", ErrUnusableFrame, u.Reason))
			fields := err.Fields()
			fields["line"] = lines
			d.logger.Debug("stream line skipped", fields)
		}
		if t, isTool := frame.(ToolResult); isTool && t.Dropped > 0 {
			d.logger.Debug("non-object hits dropped", map[string]interface{}{
				"line":    lines,
				"dropped": t.Dropped,
				"kept":    len(t.Hits),
			})
		}
		agg.Add(frame)
	}

	if err := splitter.Err(); err != nil {
		d.logger.Warn("stream read ended early, returning partial reply", map[string]interface{}{
			"lines": lines,
			"error": err,
		})
	}

	reply := agg.Reply()
	d.logger.Debug("stream decoded", map[string]interface{}{
		"lines":        lines,
		"textLength":   len(reply.Text),
		"products":     len(reply.Products),
		"unrecognized": agg.Unrecognized(),
	})
	return reply
}

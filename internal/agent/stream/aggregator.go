// internal/agent/stream/aggregator.go
package stream

import "strings"

// Aggregator folds frames into a reply in a single pass.
type Aggregator struct {
	text         strings.Builder
	products     []Hit
	unrecognized int
}

func (a *Aggregator) Add(f Frame) {
	switch v := f.(type) {
	case TextDelta:
		a.text.WriteString(v.Text)
	case ToolResult:
		a.products = append(a.products, v.Hits...)
	case Unrecognized:
		a.unrecognized++
	}
}

// Unrecognized reports how many frames were ignored so far.
func (a *Aggregator) Unrecognized() int {
	return a.unrecognized
}

func (a *Aggregator) Reply() Reply {
	products := a.products
	if products == nil {
		products = []Hit{}
	}
	return Reply{Text: a.text.String(), Products: products}
}

// Aggregate folds an ordered frame sequence into one reply.
func Aggregate(frames []Frame) Reply {
	var a Aggregator
	for _, f := range frames {
		a.Add(f)
	}
	return a.Reply()
}

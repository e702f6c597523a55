package stream

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/common/logger"
)

const sampleBody = "0:\"Hello \"\n0:\"world\"\na:{\"result\":{\"hits\":[{\"objectID\":\"1\"}]}}\nbad-line\n"

// ==========================================
// Decoder
// ==========================================

func TestDecode_SampleBody(t *testing.T) {
	d := NewDecoder(logger.NewTestLogger(t))

	reply := d.Decode(sampleBody)

	assert.Equal(t, "Hello world", reply.Text)
	require.Len(t, reply.Products, 1)
	assert.JSONEq(t, `{"objectID":"1"}`, string(reply.Products[0]))
}

func TestDecode_EmptyBody(t *testing.T) {
	d := NewDecoder(logger.NewNoOpLogger())

	reply := d.Decode("")
	assert.Equal(t, "", reply.Text)
	assert.NotNil(t, reply.Products)
	assert.Empty(t, reply.Products)

	out, err := json.Marshal(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"","products":[]}`, string(out))
}

func TestDecode_ToolOnlyBody(t *testing.T) {
	d := NewDecoder(logger.NewNoOpLogger())

	body := `a:{"result":{"hits":[{"objectID":"7","name":"Pixel 8"},{"objectID":"9"}]}}` + "\n" +
		`a:{"result":{"hits":[{"objectID":"7"}]}}`

	reply := d.Decode(body)
	assert.Equal(t, "", reply.Text)
	require.Len(t, reply.Products, 3)
	assert.JSONEq(t, `{"objectID":"7","name":"Pixel 8"}`, string(reply.Products[0]))
	assert.JSONEq(t, `{"objectID":"9"}`, string(reply.Products[1]))
	assert.JSONEq(t, `{"objectID":"7"}`, string(reply.Products[2]), "duplicates are kept in order")
}

func TestDecode_KeepsObjectHitsNextToStrayElements(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewDecoder(logger.NewZapAdapter(zap.New(core)))

	reply := d.Decode(`a:{"result":{"hits":[{"objectID":"1"},"stray",{"objectID":"2"},null,3]}}`)

	require.Len(t, reply.Products, 2)
	assert.JSONEq(t, `{"objectID":"1"}`, string(reply.Products[0]))
	assert.JSONEq(t, `{"objectID":"2"}`, string(reply.Products[1]))

	dropped := logs.FilterMessage("non-object hits dropped").All()
	require.Len(t, dropped, 1)
	assert.EqualValues(t, 3, dropped[0].ContextMap()["dropped"])
}

func TestDecode_HitsPassThroughUnchanged(t *testing.T) {
	d := NewDecoder(logger.NewNoOpLogger())

	hit := `{"objectID":"42","sku":9007199254740993,"price":1e2,"tags":["a"]}`
	reply := d.Decode(`a:{"result":{"hits":[` + hit + `]}}`)

	require.Len(t, reply.Products, 1)
	assert.Equal(t, hit, string(reply.Products[0]))

	out, err := json.Marshal(reply)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sku":9007199254740993`)
}

func TestDecode_ToleratesMalformedLines(t *testing.T) {
	d := NewDecoder(logger.NewNoOpLogger())

	body := strings.Join([]string{
		`f:{"messageId":"msg-1"}`,
		`0:"The "`,
		`0:not-json`,
		``,
		`   `,
		`a:{"toolCallId":"call-1"}`,
		`a:{"result":{"hits":"nope"}}`,
		`0:"Dell XPS 13\r"`,
		`e:{"finishReason":"stop"}`,
		`d:{"finishReason":"stop"}`,
	}, "\r\n")

	reply := d.Decode(body)
	assert.Equal(t, "The Dell XPS 13\r", reply.Text)
	assert.Empty(t, reply.Products)
}

func TestDecode_LongLine(t *testing.T) {
	d := NewDecoder(logger.NewNoOpLogger())

	long := strings.Repeat("x", 200*1024)
	reply := d.Decode(`0:"` + long + `"` + "\n" + `0:"!"`)
	assert.Equal(t, long+"!", reply.Text)
}

type failingReader struct {
	data io.Reader
}

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.data.Read(p)
	if errors.Is(err, io.EOF) {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestDecodeReader_PartialOnReadError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewDecoder(logger.NewZapAdapter(zap.New(core)))

	r := &failingReader{data: strings.NewReader("0:\"Hello \"\n0:\"wor")}
	reply := d.DecodeReader(r)

	assert.Equal(t, "Hello ", reply.Text)
	assert.NotNil(t, reply.Products)
	assert.Equal(t, 1, logs.FilterMessage("stream read ended early, returning partial reply").Len())
}

func TestDecode_LogsSkippedLines(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewDecoder(logger.NewZapAdapter(zap.New(core)))

	d.Decode(sampleBody)

	skipped := logs.FilterMessage("stream line skipped").All()
	require.Len(t, skipped, 1)
	fields := skipped[0].ContextMap()
	assert.Equal(t, "DECODE_FRAME_FAILED", fields["errorCode"])
	assert.EqualValues(t, 4, fields["line"])
}

// ==========================================
// Classifier and aggregator
// ==========================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		frame  Frame
		isLine bool
	}{
		{"blank", "", nil, false},
		{"whitespace", " \t ", nil, false},
		{"text", `0:"hi"`, TextDelta{Text: "hi"}, true},
		{"escaped text", `0:"a\nb é"`, TextDelta{Text: "a\nb é"}, true},
		{"tool without result", `a:{"toolCallId":"x"}`, ToolResult{}, true},
		{"tool with null hits", `a:{"result":{"hits":null}}`, ToolResult{}, true},
		{"tool with hits", `a:{"result":{"hits":[{"objectID":"1"}]}}`, ToolResult{Hits: []Hit{Hit(`{"objectID":"1"}`)}}, true},
		{"tool with stray hit", `a:{"result":{"hits":[{"objectID":"1"},"x"]}}`, ToolResult{Hits: []Hit{Hit(`{"objectID":"1"}`)}, Dropped: 1}, true},
		{"no marker", "bad-line", Unrecognized{Payload: "bad-line", Reason: "no marker"}, true},
		{"unknown marker", `9:{"x":1}`, Unrecognized{Marker: "9", Payload: `{"x":1}`, Reason: "unknown marker"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, ok := Classify(tt.line)
			assert.Equal(t, tt.isLine, ok)
			assert.Equal(t, tt.frame, frame)
		})
	}
}

func TestClassify_BadJSON(t *testing.T) {
	frame, ok := Classify(`0:{"not":"a string"}`)
	require.True(t, ok)
	u, isUnrecognized := frame.(Unrecognized)
	require.True(t, isUnrecognized)
	assert.Equal(t, "0", u.Marker)
	assert.Contains(t, u.Reason, "invalid text payload")
	assert.Equal(t, KindUnrecognized, frame.Kind())
}

func TestAggregate(t *testing.T) {
	reply := Aggregate([]Frame{
		TextDelta{Text: "a"},
		ToolResult{Hits: []Hit{Hit(`{"objectID":"1"}`)}},
		Unrecognized{Reason: "unknown marker"},
		TextDelta{Text: "b"},
		ToolResult{Hits: []Hit{Hit(`{"objectID":"2"}`), Hit(`{"objectID":"1"}`)}},
	})

	assert.Equal(t, "ab", reply.Text)
	assert.Equal(t, []Hit{Hit(`{"objectID":"1"}`), Hit(`{"objectID":"2"}`), Hit(`{"objectID":"1"}`)}, reply.Products)

	empty := Aggregate(nil)
	assert.Equal(t, Reply{Text: "", Products: []Hit{}}, empty)
}

func TestSplitter(t *testing.T) {
	s := NewSplitter(strings.NewReader("one\r\ntwo\n\nthree"))

	var lines []string
	for s.Next() {
		lines = append(lines, s.Line())
	}
	assert.Equal(t, []string{"one", "two", "", "three"}, lines)
	assert.NoError(t, s.Err())
	assert.False(t, s.Next())
}

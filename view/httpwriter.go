package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// observationPayload is the wire format POSTed to a distant observer,
// mirroring VLE's NetStreamWriter sending observations over the network
// rather than to local disk.
type observationPayload struct {
	Sim   string      `json:"sim"`
	Port  string      `json:"port"`
	View  string      `json:"view"`
	Time  float64     `json:"time"`
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

// HTTPStreamWriter is the distant StreamWriter backend: it batches
// observations and POSTs them as JSON to a remote collector, grounded
// on the monitoring server's approach of exposing simulation state
// over net/http rather than writing it to local disk.
type HTTPStreamWriter struct {
	client   *http.Client
	endpoint string
	file     string

	batch     []observationPayload
	batchSize int
}

// NewHTTPStreamWriter creates an unopened HTTPStreamWriter. Call Open
// before Process.
func NewHTTPStreamWriter() *HTTPStreamWriter {
	return &HTTPStreamWriter{
		client:    &http.Client{Timeout: 10 * time.Second},
		batchSize: 500,
	}
}

// Open records the collector endpoint (location) and the stream name
// (file) that tags every batch POSTed to it.
func (w *HTTPStreamWriter) Open(
	plugin, location, file string,
	data map[string]string,
	t0 devstime.Time,
) error {
	_ = plugin
	_ = data
	_ = t0

	w.endpoint = location
	w.file = file

	return nil
}

// Process buffers one observation, flushing the batch once it reaches
// batchSize.
func (w *HTTPStreamWriter) Process(evt devsevent.ObservationEvent, value atomicmodel.Value) error {
	w.batch = append(w.batch, observationPayload{
		Sim:   string(evt.Target),
		Port:  evt.Port,
		View:  evt.View,
		Time:  float64(evt.Time),
		Kind:  kindName(value.Kind()),
		Value: rawValue(value),
	})

	if len(w.batch) >= w.batchSize {
		return w.flush()
	}

	return nil
}

func (w *HTTPStreamWriter) flush() error {
	if len(w.batch) == 0 || w.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(struct {
		Stream       string               `json:"stream"`
		Observations []observationPayload `json:"observations"`
	}{Stream: w.file, Observations: w.batch})
	if err != nil {
		return fmt.Errorf("encoding observation batch: %w", err)
	}

	resp, err := w.client.Post(w.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting observation batch to %q: %w", w.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector %q rejected batch: status %d", w.endpoint, resp.StatusCode)
	}

	w.batch = nil

	return nil
}

// Close flushes any buffered observations.
func (w *HTTPStreamWriter) Close(tEnd devstime.Time) error {
	_ = tEnd
	return w.flush()
}

func kindName(k atomicmodel.ValueKind) string {
	switch k {
	case atomicmodel.KindBool:
		return "bool"
	case atomicmodel.KindInt:
		return "int"
	case atomicmodel.KindDouble:
		return "double"
	case atomicmodel.KindString:
		return "string"
	default:
		return "unknown"
	}
}

func rawValue(value atomicmodel.Value) interface{} {
	switch v := value.(type) {
	case atomicmodel.BoolValue:
		return bool(v)
	case atomicmodel.IntValue:
		return int64(v)
	case atomicmodel.DoubleValue:
		return float64(v)
	case atomicmodel.StringValue:
		return string(v)
	default:
		return v
	}
}

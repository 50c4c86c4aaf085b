package output

import (
	"encoding/json"
	"io"
)

// WriteDocument serializes v — a profile.Document or inventory.Snapshot —
// as the sink's single JSON output. Profile and snapshot documents have
// their own top-level shapes, written in full and produced only once per
// invocation, unlike the per-event streaming schema json.go/body.go
// hand-roll encoding for. There is no named-escape contract to match here
// (no fixed per-kind field list, no repeated-event array framing), so this
// uses encoding/json directly rather than the hand-rolled encoder above.
func WriteDocument(sink io.Writer, pretty bool, v interface{}) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	if _, err := sink.Write(data); err != nil {
		return err
	}
	_, err = sink.Write([]byte("\n"))
	return err
}

package simulation

import "bytes"

// dataPrefix marks candidate event records. Everything else on the stream
// (blank lines, comments, other SSE fields) is ignored.
var dataPrefix = []byte("data: ")

// FrameDecoder converts an arbitrarily chunked byte stream into complete
// data: payloads. A single record may arrive split across many reads and a
// single read may carry many records; the decoder buffers the trailing
// incomplete line between calls.
//
// Splitting on '\n' is UTF-8 safe without incremental rune decoding: 0x0A
// never occurs as a continuation byte, so a multi-byte character split
// across chunks is reassembled intact inside the buffer.
//
// The zero value is ready to use. FrameDecoder is not safe for concurrent
// use; the stream has exactly one reader.
type FrameDecoder struct {
	buf []byte
}

// Write appends chunk to the internal buffer and returns the payloads of all
// data: records completed by it, in order. Returned slices are copies and
// remain valid after subsequent calls.
func (d *FrameDecoder) Write(chunk []byte) [][]byte {
	d.buf = append(d.buf, chunk...)

	var payloads [][]byte
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]

		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := make([]byte, len(line)-len(dataPrefix))
		copy(payload, line[len(dataPrefix):])
		payloads = append(payloads, payload)
	}
	return payloads
}

// Close discards any buffered trailing fragment. A fragment without a
// terminating newline is not a complete record and is not salvageable.
func (d *FrameDecoder) Close() {
	d.buf = nil
}

// Buffered reports how many bytes are held back awaiting a newline.
func (d *FrameDecoder) Buffered() int {
	return len(d.buf)
}

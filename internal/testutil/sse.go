// Package testutil provides shared testing utilities for the kanon project.
package testutil

import (
	"bufio"
	"strings"
	"testing"
)

// ParseDataFrames extracts the payload of every `data: {...}` line from a
// streamed response body. Non-data lines are ignored, matching the wire
// contract of the simulation stream.
//
// Example:
//
//	frames := testutil.ParseDataFrames(t, rec.Body.String())
//	require.NotEmpty(t, frames)
func ParseDataFrames(t *testing.T, body string) []string {
	t.Helper()

	var frames []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			frames = append(frames, payload)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning stream body: %v", err)
	}
	return frames
}

package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const maxSSELine = 1024 * 1024

// StreamParser handles parsing of Server-Sent Events (SSE) streams
type StreamParser struct {
	scanner *bufio.Scanner
}

// NewStreamParser creates a new stream parser
func NewStreamParser(reader io.Reader) *StreamParser {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	return &StreamParser{scanner: scanner}
}

// StreamChunk represents a single chunk from the stream
type StreamChunk struct {
	Content      string
	FinishReason string
	Done         bool
}

// Next reads the next chunk from the stream. Keep-alive comments and
// undecodable lines are skipped; an in-band error object ends the stream
// with a StatusError.
func (p *StreamParser) Next() (*StreamChunk, error) {
	for p.scanner.Scan() {
		line := p.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			return &StreamChunk{Done: true}, nil
		}

		var resp Response
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			continue
		}
		if resp.Error != nil {
			return nil, &StatusError{StatusCode: resp.Error.Code, Body: resp.Error.Message}
		}

		if len(resp.Choices) > 0 {
			choice := resp.Choices[0]
			content := choice.Delta.Content
			if content == "" {
				content = choice.Message.Content
			}
			return &StreamChunk{
				Content:      content,
				FinishReason: choice.FinishReason,
				Done:         choice.FinishReason != "",
			}, nil
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return &StreamChunk{Done: true}, nil
}

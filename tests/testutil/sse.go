package testutil

import (
	"bufio"
	"io"
	"strings"
)

// SSEEvent is one parsed Server-Sent Events frame.
type SSEEvent struct {
	Event string
	ID    string
	Data  string
}

// ReadSSE parses frames from r until it is exhausted or closed. The channel
// is closed when reading stops.
func ReadSSE(r io.Reader) <-chan SSEEvent {
	out := make(chan SSEEvent, 16)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		var cur SSEEvent
		var data []string
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if cur.Event != "" || len(data) > 0 {
					cur.Data = strings.Join(data, "\n")
					out <- cur
				}
				cur, data = SSEEvent{}, nil
				continue
			}
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				cur.Event = value
			case "id":
				cur.ID = value
			case "data":
				data = append(data, value)
			}
		}
	}()
	return out
}

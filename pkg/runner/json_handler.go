package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
// Each response is written as one JSON object; each input line is either a
// JSON string, an object with a "text" field, or plain text.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder

	lines *lineReader
}

// systemMessage is the envelope for meta-messages so clients can tell them from responses.
type systemMessage struct {
	System string `json:"system"`
}

type inputMessage struct {
	Text string `json:"text"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
		lines:   newLineReader(r),
	}
}

func (h *JSONHandler) Output(ctx context.Context, resp domain.Response) error {
	return h.Encoder.Encode(resp)
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		line, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		text := decodeInput(line)
		clean, err := SanitizeInput(text)
		if err != nil {
			if encErr := h.SystemOutput(ctx, err.Error()); encErr != nil {
				return "", encErr
			}
			continue
		}
		return clean, nil
	}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemMessage{System: msg})
}

func decodeInput(line string) string {
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return s
	}
	var msg inputMessage
	if err := json.Unmarshal([]byte(line), &msg); err == nil && msg.Text != "" {
		return msg.Text
	}
	return line
}

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// DefaultPrompt is printed before every read.
const DefaultPrompt = "> "

// TextHandler implements line-oriented terminal IO.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string

	lines *lineReader
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerPrompt replaces the default prompt.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		Prompt: DefaultPrompt,
		lines:  newLineReader(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Output prints the response message, any command output and follow-up suggestions.
func (h *TextHandler) Output(ctx context.Context, resp domain.Response) error {
	text := FormatResponse(resp)
	if text == "" {
		return nil
	}
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(text, "\n"))
	return err
}

// Input prompts and waits for one sanitized line.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		fmt.Fprint(h.Writer, h.Prompt)

		text, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}
		clean, err := SanitizeInput(text)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[taox] %s\n", msg)
	return err
}

// FormatResponse renders a response as markdown: the message, the redacted
// command output in a fenced block, then the suggestions as a list.
func FormatResponse(resp domain.Response) string {
	var b strings.Builder
	b.WriteString(resp.Message)

	if resp.Result != nil {
		if out := strings.TrimSpace(resp.Result.Output); out != "" {
			b.WriteString("\n\n```\n")
			b.WriteString(out)
			b.WriteString("\n```")
		}
	}

	if len(resp.Suggestions) > 0 {
		b.WriteString("\n\nYou could also:\n")
		for _, s := range resp.Suggestions {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}

type inputResult struct {
	text string
	err  error
}

// lineReader owns the single goroutine reading r. Reads are blocking and cannot
// be interrupted, so callers select on the channel and their context instead.
type lineReader struct {
	reader    *bufio.Reader
	inputChan chan inputResult
	startOnce sync.Once
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{reader: bufio.NewReader(r)}
}

func (l *lineReader) pump() {
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" {
			l.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.inputChan <- inputResult{err: err}
			}
			close(l.inputChan)
			return
		}
	}
}

// next returns the next line without its terminator, or io.EOF once the source is drained.
func (l *lineReader) next(ctx context.Context) (string, error) {
	l.startOnce.Do(func() {
		l.inputChan = make(chan inputResult)
		go l.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

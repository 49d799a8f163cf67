// Package secret provides ports.SecretProvider implementations.
package secret

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"golang.org/x/term"
)

// DefaultEnvVar is read by Env when no variable name is given.
const DefaultEnvVar = "TAOX_WALLET_PASSWORD"

// Terminal reads a secret from the controlling terminal without echo.
type Terminal struct {
	In     *os.File
	Out    io.Writer
	Prompt string
}

// NewTerminal reads from stdin and writes the prompt to stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr, Prompt: "Wallet password: "}
}

// Secret returns domain.ErrNoInteractiveInput when In is not a terminal.
func (t *Terminal) Secret(ctx context.Context) (string, error) {
	fd := int(t.In.Fd())
	if !term.IsTerminal(fd) {
		return "", domain.ErrNoInteractiveInput
	}
	if t.Out != nil && t.Prompt != "" {
		fmt.Fprint(t.Out, t.Prompt)
	}

	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := term.ReadPassword(fd)
		ch <- result{b, err}
	}()

	select {
	case <-ctx.Done():
		// The reader returns with the next line; its result is discarded.
		return "", ctx.Err()
	case r := <-ch:
		if t.Out != nil {
			fmt.Fprintln(t.Out)
		}
		if r.err != nil {
			return "", fmt.Errorf("read secret: %w", r.err)
		}
		return string(r.b), nil
	}
}

// Env reads the secret from an environment variable.
type Env struct {
	Name string
}

func (e Env) Secret(ctx context.Context) (string, error) {
	name := e.Name
	if name == "" {
		name = DefaultEnvVar
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s is not set", domain.ErrNoInteractiveInput, name)
	}
	return v, nil
}

// Static always returns the same value. Intended for tests and demos.
type Static string

func (s Static) Secret(context.Context) (string, error) {
	return string(s), nil
}

// Chain tries each provider in order, moving on only when a provider has no input source.
func Chain(providers ...ports.SecretProvider) ports.SecretProvider {
	return ports.SecretFunc(func(ctx context.Context) (string, error) {
		for _, p := range providers {
			v, err := p.Secret(ctx)
			if errors.Is(err, domain.ErrNoInteractiveInput) {
				continue
			}
			return v, err
		}
		return "", domain.ErrNoInteractiveInput
	})
}

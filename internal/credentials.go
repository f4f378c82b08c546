package internal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// DefaultAPIKeyEnv is the variable and secrets-file key holding the API key
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// CredentialProvider yields an optional credential
type CredentialProvider interface {
	Name() string
	Lookup() (string, bool)
}

// CredentialChain tries providers in order; the first non-empty value wins
type CredentialChain []CredentialProvider

// Resolve returns the first non-empty credential and the name of its provider
func (c CredentialChain) Resolve() (credential string, source string, ok bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, found := p.Lookup(); found {
			if v = strings.TrimSpace(v); v != "" {
				LogDebug("credential resolved from %s", p.Name())
				return v, p.Name(), true
			}
		}
	}
	return "", "", false
}

// StaticCredential is an explicitly supplied value, e.g. a --api-key flag
type StaticCredential struct {
	Label string
	Value string
}

func (s StaticCredential) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

func (s StaticCredential) Lookup() (string, bool) {
	return s.Value, strings.TrimSpace(s.Value) != ""
}

// sessionCredential reads the session's explicit credential field
type sessionCredential struct {
	session *SessionState
}

func (sessionCredential) Name() string { return "session" }

func (s sessionCredential) Lookup() (string, bool) {
	v := s.session.Config().APICredential
	return v, v != ""
}

// EnvCredential reads an environment variable
type EnvCredential struct {
	Var string
}

func (e EnvCredential) Name() string { return "env:" + e.Var }

func (e EnvCredential) Lookup() (string, bool) {
	return os.LookupEnv(e.Var)
}

// DotenvCredential reads Key from a dotenv-style secrets file.
// A missing file is not an error; an unreadable one is logged and skipped.
type DotenvCredential struct {
	Path string
	Key  string
}

func (d DotenvCredential) Name() string { return "secrets:" + d.Path }

func (d DotenvCredential) Lookup() (string, bool) {
	if strings.TrimSpace(d.Path) == "" {
		return "", false
	}
	values, err := godotenv.Read(d.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			LogWarn("Failed to read secrets file %s: %v", d.Path, err)
		}
		return "", false
	}
	v, ok := values[d.Key]
	return v, ok
}

// PromptCredential asks for the key on the terminal without echo.
// It only prompts when In is a terminal, and asks at most once.
type PromptCredential struct {
	In     *os.File
	Out    io.Writer
	Prompt string

	asked bool
	value string
}

func (p *PromptCredential) Name() string { return "prompt" }

func (p *PromptCredential) Lookup() (string, bool) {
	if p.asked {
		return p.value, p.value != ""
	}
	if p.In == nil || !term.IsTerminal(int(p.In.Fd())) {
		return "", false
	}
	p.asked = true

	prompt := p.Prompt
	if prompt == "" {
		prompt = "API key: "
	}
	if p.Out != nil {
		_, _ = fmt.Fprint(p.Out, prompt)
	}
	b, err := term.ReadPassword(int(p.In.Fd()))
	if p.Out != nil {
		_, _ = fmt.Fprintln(p.Out)
	}
	if err != nil {
		LogWarn("Failed to read API key: %v", err)
		return "", false
	}
	p.value = strings.TrimSpace(string(b))
	return p.value, p.value != ""
}

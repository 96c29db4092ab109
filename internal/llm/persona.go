package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed persona.md
var defaultPersona string

// Persona returns the system prompt sent with every completion request.
func Persona() string {
	return defaultPersona
}

// LoadPersona reads a replacement prompt from path. An empty path keeps the built-in one.
func LoadPersona(path string) (string, error) {
	if path == "" {
		return defaultPersona, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona: %w", err)
	}
	prompt := strings.TrimSpace(string(b))
	if prompt == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	return prompt, nil
}

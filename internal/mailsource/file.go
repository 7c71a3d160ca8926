package mailsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile returns the email text stored at path. Files with an .eml
// extension are parsed as MIME messages; anything else is used verbatim.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".eml") {
		return string(raw), nil
	}

	msg, err := ParseMessage(raw)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return msg.Body, nil
}

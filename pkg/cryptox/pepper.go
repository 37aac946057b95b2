package cryptox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGeneratePepper loads the pepper from file, generating and persisting a
// new random one if the file does not exist. An empty path disables the
// pepper.
func LoadOrGeneratePepper(file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", nil
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	pepperBytes, err := os.ReadFile(file)
	if err == nil {
		return string(pepperBytes), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	pepper, err := RandomSecret(PepperSize)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
		return "", err
	}
	return pepper, nil
}

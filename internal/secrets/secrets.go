// Package secrets resolves credentials from Docker or Kubernetes secret
// files and from ${VAR} references in configuration values. Secret values
// are never logged.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/logger"
)

const (
	// secrets are tokens and passwords, not documents
	maxSecretFileSize = 64 * 1024

	// group and other permission bits
	permissiveBits = 0o077
)

// ${VAR} or ${VAR:-default}. A bare $ is left alone so passwords may
// contain it.
var referencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

func getLogger() logger.Logger {
	return logger.Global().Module("secrets")
}

// ExpandString replaces ${VAR} and ${VAR:-default} references with values
// from the environment. A reference to an unset variable without a default
// is an error naming the variable.
func ExpandString(s string) (string, error) {
	var missing []string

	expanded := referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := referencePattern.FindStringSubmatch(ref)
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		if m[2] != "" {
			return m[3]
		}
		missing = append(missing, m[1])
		return ""
	})

	if len(missing) > 0 {
		return "", errors.New(fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))).
			Component("secrets").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return expanded, nil
}

// ReadFile reads a secret file, trimming trailing newlines. Files readable
// by group or other are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", fileError(fmt.Errorf("secret file path is empty"), path)
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fileError(fmt.Errorf("failed to stat secret file: %w", err), cleanPath)
	}
	if !info.Mode().IsRegular() {
		return "", fileError(fmt.Errorf("secret path is not a regular file"), cleanPath)
	}
	if info.Size() > maxSecretFileSize {
		return "", fileError(fmt.Errorf("secret file too large (max %d bytes)", maxSecretFileSize), cleanPath)
	}
	if perm := info.Mode().Perm(); perm&permissiveBits != 0 {
		getLogger().Warn("secret file has group/other permissions",
			logger.String("path", cleanPath),
			logger.String("perms", fmt.Sprintf("%04o", perm)))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fileError(fmt.Errorf("failed to read secret file: %w", err), cleanPath)
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fileError(fmt.Errorf("secret file is empty"), cleanPath)
	}
	return secret, nil
}

// Resolve returns the secret from filePath when set, otherwise value with
// references expanded. Both empty gives an empty secret.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	if value == "" {
		return "", nil
	}
	return ExpandString(value)
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component("secrets").
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}

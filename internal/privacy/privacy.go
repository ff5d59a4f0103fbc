// Package privacy scrubs field locations, credentials and endpoints from text
// that leaves the process, such as telemetry events and notification errors.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/tphakala/irrigo/internal/logger"
)

const (
	redactedCoordinate = "[COORD]"
	redactedEmail      = "[EMAIL]"
)

var (
	// any scheme, so broker (tcp://, mqtts://) and notification
	// (telegram://, generic+https://) URLs are caught too
	urlPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.\-]*://[^\s"'<>]+`)

	// lat=28.61, "lon": 77.2, latitude: -33.9
	coordinatePattern = regexp.MustCompile(`(?i)\b(lat|lon|lng|latitude|longitude)(["']?\s*[:=]\s*)-?\d{1,3}(\.\d+)?`)

	// 28.6139, 77.2090
	coordinatePairPattern = regexp.MustCompile(`-?\d{1,2}\.\d{3,}\s*,\s*-?\d{1,3}\.\d{3,}`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// ScrubMessage removes URLs, coordinates, email addresses and credentials
// from message. URLs are replaced by a stable hash of their structure.
func ScrubMessage(message string) string {
	if message == "" {
		return message
	}
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	message = coordinatePattern.ReplaceAllString(message, "${1}${2}"+redactedCoordinate)
	message = coordinatePairPattern.ReplaceAllString(message, redactedCoordinate)
	message = emailPattern.ReplaceAllString(message, redactedEmail)
	return logger.RedactSensitiveData(message)
}

// AnonymizeURL converts a URL to an anonymized form. Equal structure gives an
// equal result so repeated failures against one endpoint can be grouped;
// credentials, query and host names never contribute.
func AnonymizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	var normalizedParts []string
	if parsedURL.Scheme != "" {
		normalizedParts = append(normalizedParts, parsedURL.Scheme)
	}
	if host := parsedURL.Hostname(); host != "" {
		normalizedParts = append(normalizedParts, categorizeHost(host))
	}
	if parsedURL.Port() != "" {
		normalizedParts = append(normalizedParts, "port-"+parsedURL.Port())
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		normalizedParts = append(normalizedParts, anonymizePath(parsedURL.Path))
	}

	hash := sha256.Sum256([]byte(strings.Join(normalizedParts, ":")))
	return fmt.Sprintf("url-%x", hash[:12])
}

// RedactURL keeps the scheme, host and port of rawURL for display and drops
// user info, path and query. Unparseable input is fully redacted.
func RedactURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Host == "" {
		return "[URL]"
	}
	return parsedURL.Scheme + "://" + parsedURL.Host
}

// categorizeHost anonymizes a host while keeping its kind
func categorizeHost(host string) string {
	if host == "localhost" {
		return "localhost"
	}
	if ip := net.ParseIP(host); ip != nil {
		switch {
		case ip.IsLoopback():
			return "localhost"
		case ip.IsPrivate(), ip.IsLinkLocalUnicast():
			return "private-ip"
		default:
			return "public-ip"
		}
	}

	// keep only the TLD of domain names
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return "domain-" + parts[len(parts)-1]
	}
	return "unknown-host"
}

// anonymizePath hashes each path segment but keeps the number of segments
func anonymizePath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "root"
	}

	segments := strings.Split(path, "/")
	anonymized := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch {
		case segment == "":
			continue
		case isNumeric(segment):
			anonymized = append(anonymized, "numeric")
		default:
			hash := sha256.Sum256([]byte(segment))
			anonymized = append(anonymized, fmt.Sprintf("seg-%x", hash[:4]))
		}
	}
	return strings.Join(anonymized, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

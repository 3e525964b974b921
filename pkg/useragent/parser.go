// Package useragent classifies User-Agent strings into coarse device types
// for click analytics.
package useragent

import (
	"fmt"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// Parser wraps the uap-go parser with device type classification.
type Parser struct {
	parser *uaparser.Parser
}

// DeviceInfo represents parsed device information.
type DeviceInfo struct {
	DeviceType string // mobile, tablet, desktop, bot, unknown
	Browser    string
	OS         string
}

// NewParser creates a parser backed by the regex definitions bundled with
// uap-go. When regexFilePath is non-empty it is loaded instead, so the
// definitions can be updated without recompiling.
func NewParser(regexFilePath string) (*Parser, error) {
	if regexFilePath != "" {
		p, err := uaparser.New(regexFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load regexes from %s: %w", regexFilePath, err)
		}
		return &Parser{parser: p}, nil
	}

	return &Parser{parser: uaparser.NewFromSaved()}, nil
}

// Parse classifies a User-Agent string. A nil receiver falls back to the
// keyword heuristics, so callers may hold a nil *Parser safely.
func (p *Parser) Parse(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}
	if p == nil || p.parser == nil {
		return DeviceInfo{DeviceType: DetectDeviceType(userAgent), Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	info := DeviceInfo{
		Browser: orUnknown(client.UserAgent.Family),
		OS:      orUnknown(client.Os.Family),
	}
	info.DeviceType = deviceType(client, userAgent)

	return info
}

func deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family) || isBot(userAgent) {
		return "bot"
	}

	device := client.Device.Family
	if containsAny(device, "iPad", "Tablet", "Kindle") {
		return "tablet"
	}
	if containsAny(device, "iPhone", "BlackBerry", "Phone") {
		return "mobile"
	}

	switch osFamily := client.Os.Family; {
	case strings.Contains(osFamily, "iOS"):
		if strings.Contains(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case strings.Contains(osFamily, "Android"):
		// Android tablets typically omit "Mobile" from the User-Agent.
		if !strings.Contains(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	case containsAny(osFamily, "Windows", "Mac OS X", "Linux", "Ubuntu", "Chrome OS", "FreeBSD"):
		return "desktop"
	}

	return "unknown"
}

// DetectDeviceType is a keyword heuristic used when no regex-based parser is
// available.
func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	if containsAny(ua, "bot", "crawler", "spider", "scraper") {
		return "bot"
	}
	if containsAny(ua, "tablet", "ipad", "kindle", "silk") {
		return "tablet"
	}
	if containsAny(ua, "mobile", "android", "iphone", "ipod", "blackberry", "windows phone", "opera mini") {
		return "mobile"
	}

	return "desktop"
}

func isBot(s string) bool {
	lower := strings.ToLower(s)
	return containsAny(lower, "bot", "crawler", "spider", "scraper", "facebookexternalhit", "whatsapp", "telegram")
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}

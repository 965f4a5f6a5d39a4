// Package display turns verification results into terminal text: verdict
// badges, confidence meters, sanitized summaries and evidence lists.
package display

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()

	trustedDomains = []string{
		"snopes.com",
		"factcheck.org",
		"politifact.com",
		"reuters.com",
		"apnews.com",
		"bbc.com",
		"cnn.com",
		"npr.org",
	}
)

const meterWidth = 20

// Sanitize strips markup from backend text and decodes entities so that
// model output renders as plain text.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// Emoji returns the marker shown next to a presentation verdict.
func Emoji(v models.Verdict) string {
	switch v {
	case models.VerdictVerified:
		return "✅"
	case models.VerdictFake:
		return "❌"
	case models.VerdictPossiblyMisleading:
		return "⚠️"
	default:
		return "❓"
	}
}

// FormatConfidence renders a 0..100 score as a percentage, e.g. "85%".
func FormatConfidence(confidence int) string {
	return fmt.Sprintf("%d%%", confidence)
}

// Meter renders confidence as a fixed-width bar, e.g. "[#########-----------] 45%".
func Meter(confidence int) string {
	c := max(0, min(100, confidence))
	filled := c * meterWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", meterWidth-filled) + "] " + FormatConfidence(c)
}

// IsTrustedDomain reports whether domain belongs to a well-known fact-checking
// or news organisation.
func IsTrustedDomain(domain string) bool {
	d := strings.ToLower(domain)
	if d == "" {
		return false
	}
	for _, trusted := range trustedDomains {
		if strings.Contains(d, trusted) {
			return true
		}
	}
	return false
}

// RelativeTime describes t relative to now in whole hours below a day and
// whole days above.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	hours := int(now.Sub(t) / time.Hour)
	if hours < 0 {
		hours = 0
	}
	if hours < 24 {
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

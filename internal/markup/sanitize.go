package markup

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// SanitizeMessage keeps the inline formatting a notification may carry and
// strips everything else (scripts, handlers, block structure).
func SanitizeMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(messageSanitizer().Sanitize(trimmed))
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "br", "code")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("i", "span")
		policy.AllowElements("span")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		messagePolicy = policy
	})
	return messagePolicy
}

package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
)

// MaxNameLength bounds list names
const MaxNameLength = 100

// MaxItemLength bounds a single link or message
const MaxItemLength = 2048

var (
	linkPattern   = regexp.MustCompile(`\.\w+`)
	schemePattern = regexp.MustCompile(`^https?://`)
	wwwPattern    = regexp.MustCompile(`^https?://www\.`)
)

// ValidateRequired checks that a field is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return common.InvalidArgument(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the rune length of a field
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return common.InvalidArgument(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// ValidateEmail checks the basic email shape
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return common.InvalidArgument("email must have a valid format")
	}
	return nil
}

// ValidateListKey checks the (owner, list) pair that addresses a list or draft
func ValidateListKey(ownerEmail, listName string) error {
	if err := ValidateRequired(ownerEmail, "ownerEmail"); err != nil {
		return err
	}
	if err := ValidateRequired(listName, "listName"); err != nil {
		return err
	}
	return ValidateMaxLength(listName, MaxNameLength, "listName")
}

// ValidateLink checks that s looks like a host with a domain suffix
func ValidateLink(s string) error {
	if !linkPattern.MatchString(s) {
		return common.InvalidArgument("Invalid link: " + s)
	}
	return ValidateMaxLength(s, MaxItemLength, "link")
}

// FormatURL normalises a link to an https://www. prefix
func FormatURL(s string) string {
	if !schemePattern.MatchString(s) {
		s = "https://" + s
	}
	if !wwwPattern.MatchString(s) {
		s = schemePattern.ReplaceAllString(s, "https://www.")
	}
	return s
}

// NormalizeLinks trims, validates and formats every link
func NormalizeLinks(links []string) ([]string, error) {
	out := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, common.InvalidArgument("Link cannot be empty")
		}
		if err := ValidateLink(l); err != nil {
			return nil, err
		}
		out = append(out, FormatURL(l))
	}
	return out, nil
}

// NormalizeMessages trims every message and rejects blank ones
func NormalizeMessages(messages []string) ([]string, error) {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, common.InvalidArgument("Message cannot be empty")
		}
		if err := ValidateMaxLength(m, MaxItemLength, "message"); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ValidateContentType checks an upload against the allowed MIME types
func ValidateContentType(contentType string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(a, contentType) {
			return nil
		}
	}
	return common.InvalidArgument("Unsupported file type: " + contentType)
}

package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var categoryRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 &-]{1,31}$`)

// reservedCategories are names with routing or filtering meaning that posts
// may not claim as their own category. "All" is the virtual feed selector.
var reservedCategories = map[string]struct{}{
	"all":       {},
	"admin":     {},
	"api":       {},
	"favorites": {},
	"ws":        {},
	"metrics":   {},
}

// ValidateCategory validates a post category label.
func ValidateCategory(category string) error {
	if !categoryRegex.MatchString(category) {
		return fmt.Errorf("category must be 2-32 characters and contain only letters, numbers, spaces, hyphens, and ampersands")
	}

	if strings.HasSuffix(category, " ") || strings.HasSuffix(category, "-") {
		return fmt.Errorf("category cannot end with a space or hyphen")
	}

	if _, exists := reservedCategories[strings.ToLower(category)]; exists {
		return fmt.Errorf("category name is reserved")
	}

	return nil
}

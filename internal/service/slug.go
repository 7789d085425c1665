package service

import (
	"context"
	"strings"

	"hoopsnews/internal/models"

	"github.com/google/uuid"
)

// slugify converts a title into a URL slug: lowercase, hyphens for
// whitespace, everything else except letters and digits stripped.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '\t':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// slugExistsFunc reports whether a slug is already taken.
type slugExistsFunc func(ctx context.Context, slug string) (bool, error)

const slugSuffixAttempts = 5

// uniqueSlug returns base unchanged when free, otherwise retries with a
// random suffix. Exhausting the attempts surfaces a conflict rather
// than looping forever.
func uniqueSlug(ctx context.Context, base string, exists slugExistsFunc) (string, error) {
	if base == "" {
		base = "untitled"
	}

	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 0; i < slugSuffixAttempts; i++ {
		candidate := base + "-" + uuid.New().String()[:8]
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", models.NewConflictError("could not allocate a unique slug")
}

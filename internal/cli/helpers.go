package cli

import (
	"strings"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}

func hasPost(posts []domain.Post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func postDraft(content string) domain.PostDraft {
	return domain.PostDraft{Content: content}
}

func eventFilter(category string) domain.EventFilter {
	return domain.EventFilter{Category: category}
}

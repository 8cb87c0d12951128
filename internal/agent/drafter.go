package agent

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Draft is a composed reply with the article ids it cites.
type Draft struct {
	Reply     string
	Citations []string
}

const (
	draftGreeting      = "Thank you for contacting support. "
	draftResourceIntro = "Based on our knowledge base, here are some resources that might help:\n\n"
	draftResourceOutro = "\nIf these resources don't resolve your issue, please let us know and we'll have a human agent assist you further."
	draftNoResources   = "We've received your request and will have someone look into this shortly."
	maxCitations       = 3
)

// Drafter composes reply drafts. Deterministic: identical inputs always
// produce identical output.
type Drafter struct{}

// NewDrafter builds a drafter.
func NewDrafter() *Drafter {
	return &Drafter{}
}

// Draft cites the first min(3, len(articles)) articles in the order received.
func (d *Drafter) Draft(text string, articles []domain.Article) Draft {
	cited := articles
	if len(cited) > maxCitations {
		cited = cited[:maxCitations]
	}

	citations := make([]string, 0, len(cited))
	for _, article := range cited {
		citations = append(citations, article.ID)
	}

	var reply strings.Builder
	reply.WriteString(draftGreeting)
	if len(cited) > 0 {
		reply.WriteString(draftResourceIntro)
		for i, article := range cited {
			reply.WriteString(fmt.Sprintf("%d. %s\n", i+1, article.Title))
		}
		reply.WriteString(draftResourceOutro)
	} else {
		reply.WriteString(draftNoResources)
	}

	return Draft{Reply: reply.String(), Citations: citations}
}

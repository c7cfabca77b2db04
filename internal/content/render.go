package content

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"contest-session-service/internal/domain"
)

// Renderer turns markdown question statements into sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Render converts markdown to HTML. Raw HTML in the source survives only if the policy allows it.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(buf.String()), nil
}

// RenderContest fills DescriptionHTML on a copy of every question.
func (r *Renderer) RenderContest(c domain.Contest) (domain.Contest, error) {
	questions := make([]domain.Question, len(c.Questions))
	for i, q := range c.Questions {
		html, err := r.Render(q.Description)
		if err != nil {
			return domain.Contest{}, fmt.Errorf("render question %s: %w", q.ID, err)
		}
		q.DescriptionHTML = html
		questions[i] = q
	}
	c.Questions = questions
	return c, nil
}

// Loader matches the contest loaders of the infra packages.
type Loader interface {
	LoadContest(ctx context.Context, contestID string) (domain.Contest, error)
}

// RenderingLoader renders statements as contests are loaded, so caches hold the HTML.
type RenderingLoader struct {
	next     Loader
	renderer *Renderer
}

func NewRenderingLoader(next Loader, renderer *Renderer) *RenderingLoader {
	return &RenderingLoader{next: next, renderer: renderer}
}

func (l *RenderingLoader) LoadContest(ctx context.Context, contestID string) (domain.Contest, error) {
	c, err := l.next.LoadContest(ctx, contestID)
	if err != nil {
		return domain.Contest{}, err
	}
	return l.renderer.RenderContest(c)
}

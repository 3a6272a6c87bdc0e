package workflow

import (
	"context"
	"fmt"
	"strings"

	"quadvoice/internal/logging"
	"quadvoice/internal/store"
)

// Generator produces one markdown article per platform. The Anthropic client
// satisfies this; tests substitute fakes.
type Generator interface {
	GenerateArticle(ctx context.Context, theme, platform, angle, identitySummary string, styleRules map[string]string) (string, error)
}

// draftArticle asks the generator for one article and falls back to the local
// template when the generator is absent, errors, or returns nothing. Draft
// failures never abort the pipeline.
func (e *Engine) draftArticle(ctx context.Context, state *State, platform store.Platform) string {
	angle := state.Angles[platform]
	if e.generator != nil {
		body, err := e.generator.GenerateArticle(ctx, state.Theme, string(platform), angle, state.IdentitySummary, state.StyleRules[platform])
		if err == nil && strings.TrimSpace(body) != "" {
			return body
		}
		if err != nil {
			e.logger.Warn("draft generation degraded to local template",
				logging.String(logging.FieldPlatform, string(platform)),
				logging.Error(err))
		}
	}
	return FallbackArticle(state.Theme, string(platform), angle, state.IdentitySummary)
}

// FallbackArticle renders the deterministic local article skeleton.
func FallbackArticle(theme, platform, angle, identitySummary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — %s\n", theme, platform)
	fmt.Fprintf(&b, "- Angle: %s\n", angle)
	fmt.Fprintf(&b, "- Voice: %s\n", identitySummary)
	b.WriteString("## Intro\nPlaceholder intro.\n\n")
	b.WriteString("## Points\n- Point A\n- Point B\n- Point C\n\n")
	b.WriteString("## Takeaway\nKey takeaway here.\n")
	return b.String()
}

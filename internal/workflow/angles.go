package workflow

import (
	"fmt"

	"quadvoice/internal/store"
)

var angleTemplates = map[store.Platform]string{
	store.PlatformQiita: "How-to angle for %s",
	store.PlatformZenn:  "Concept deep-dive on %s",
	store.PlatformNote:  "Storytelling about %s",
	store.PlatformOwned: "SEO and conversion plan for %s",
}

// PlanAngles derives one editorial angle per platform from the theme. The
// result always carries every platform key, even for an empty theme.
func PlanAngles(theme string) map[store.Platform]string {
	angles := make(map[store.Platform]string, len(angleTemplates))
	for _, platform := range store.Platforms() {
		angles[platform] = fmt.Sprintf(angleTemplates[platform], theme)
	}
	return angles
}

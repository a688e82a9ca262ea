// Package static implements generator.Generator with deterministic canned
// text. It keeps the system fully functional without API credentials and
// gives tests stable output.
package static

import (
	"context"
	"strings"

	"github.com/maravaman/intent-orchestra-nexus/generator"
)

// topicText maps a trigger word found in the prompt to a canned paragraph.
// Order matters: earlier entries win, and a prompt can accumulate several
// paragraphs when it touches several topics.
var topicText = []struct {
	trigger string
	text    string
}{
	{"mountain", "The high country rewards an early start: alpine light hits the ridgelines around Cascade Pass well before the valley wakes up, and the summit panoramas stretch for miles on a clear day."},
	{"valley", "Glacier-carved valleys like Yosemite Valley concentrate the best of the landscape in a few walkable miles, with granite walls rising on both sides of the meadow floor."},
	{"scenic", "For a classic viewpoint loop, follow the rim road clockwise and stop at the marked overlooks; the third pullout above Emerald Bay is the one photographers queue for at sunset."},
	{"sunset", "West-facing overlooks catch the warmest light in the final hour before dusk; arrive thirty minutes early to claim a spot along the stone wall at Inspiration Point."},
	{"river", "The river runs highest in late spring when snowmelt feeds the upper drainage. Below the confluence the gradient eases, and the gravel bars make easy rest stops for paddlers."},
	{"waterfall", "The falls drop in two tiers, and the lower viewing deck stays open year-round. Expect heavy spray through June near Vernal Falls and bring a shell layer."},
	{"lake", "The lakeshore trail is flat for the first two miles, then climbs gently to a rocky point with a clean view across the water toward the far headwall."},
	{"rapids", "The canyon stretch holds class III rapids at moderate flows; scout the entry from river left and portage on the obvious bench when the gauge runs above four feet."},
	{"park", "The park's main entrance opens at dawn, and the visitor center posts same-day trail conditions. Backcountry permits are issued one valley over at the wilderness desk."},
	{"trail", "The loop trail is well signed and mostly shaded; budget three hours at an easy pace and carry water past the junction, as the spur to the overlook is dry."},
	{"camping", "Walk-in sites along the creek fill first on weekends. The upper loop stays quieter, and the host keeps firewood at the kiosk near the Pine Flat campground."},
	{"wildlife", "Dawn and dusk are the reliable windows for wildlife along the meadow edge; keep a respectful distance from elk in the rut and store food in the provided lockers."},
	{"forest", "Old-growth groves sit a short walk from the road on the nature loop, where interpretive signs mark the oldest cedars in the reserve."},
	{"hiking", "Start from the north trailhead to get the steep mile done in morning shade; the grade relents after the switchbacks and the ridge walk to the lookout is gentle."},
}

const fallbackText = "Here's what I can offer on that: the area has a wide range of options depending on season and how far you want to travel, and conditions change quickly, so it's worth checking a current report before you set out."

// Generator produces canned text keyed off trigger words in the prompt.
type Generator struct{}

// New creates a static Generator.
func New() *Generator {
	return &Generator{}
}

// Generate returns the canned paragraphs whose triggers appear in the
// prompt, or a generic fallback when none match. It never fails.
func (g *Generator) Generate(ctx context.Context, req *generator.Request) (*generator.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := strings.ToLower(req.Prompt)
	var parts []string
	for _, t := range topicText {
		if strings.Contains(prompt, t.trigger) {
			parts = append(parts, t.text)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, fallbackText)
	}
	return &generator.Result{Text: strings.Join(parts, " ")}, nil
}

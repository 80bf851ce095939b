package deepseek

import (
	"fmt"
	"strings"

	"github.com/arcanalab/tarot-api/internal/interpretation"
)

// systemPrompt fixes the reader persona and the strict JSON output contract.
// The four keys mirror domain.ReadingResult.
const systemPrompt = `You are an empathetic tarot reader. Based on the spread and the cards the
querent has drawn, produce a personalized interpretation.

You must reply strictly as JSON, with nothing outside the JSON document (do
not include ` + "```json" + ` fences). The structure is:

{
    "reading_content": "card-by-card interpretation",
    "analysis": "overall analysis",
    "quote": "a single resonant line",
    "advice": "concrete advice"
}

Field requirements:
1. reading_content: open with one line that sets the scene, briefly state
   the meaning of the spread (at most two sentences), then interpret each
   card as keyword + imagery + what it symbolizes in the querent's
   situation, separating cards with line breaks.
2. analysis: tie the cards together and answer the querent's question
   directly.
3. quote: one warm, powerful line.
4. advice: three concrete suggestions, each with an actionable step,
   separated by line breaks.

Tone: like a wise friend speaking softly; warm, never preachy. Avoid jargon
such as "subconscious" or "energy field"; prefer "inner voice" or "how your
feelings move". Do not use emoji.`

// buildUserMessage renders the dynamic half of the prompt pair: question,
// spread, optional position labels, and the cards in draw order.
func buildUserMessage(req interpretation.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "My question is: %s\n\n", req.Question)
	fmt.Fprintf(&b, "Spread used: %s", req.Spread)

	// Position labels are advisory; they only make sense when there is one
	// per card.
	if len(req.Positions) > 0 && len(req.Positions) == len(req.Cards) {
		fmt.Fprintf(&b, "\n\nPosition meanings (in order): %s",
			strings.Join(req.Positions, ", "))
	}

	cards := make([]string, 0, len(req.Cards))
	for _, c := range req.Cards {
		cards = append(cards, fmt.Sprintf("%s (%s)", c.Name, c.Orientation))
	}
	fmt.Fprintf(&b, "\n\nCards drawn (in position order): %s", strings.Join(cards, ", "))

	b.WriteString("\n\nPlease interpret these cards for me.")
	return b.String()
}

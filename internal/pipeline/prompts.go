package pipeline

import "podcast-generator/internal/models"

const outlineSystemPrompt = `You are an experienced podcast producer planning a single-host episode.
Reply with JSON only, no commentary, using exactly this shape:
{"sections":[{"title":"string","description":"string","talkingPoints":["string"]}]}
Plan between 3 and 6 sections. The first section opens the episode and the last one closes it.`

const segmentsSystemPrompt = `You are a podcast scriptwriter. Expand the outline you are given into narration for a single host.
Reply with JSON only, no commentary, using exactly this shape:
{"segments":[{"title":"string","summary":"string","script":"string"}]}
Write one segment per outline section, in the same order. Each script is the exact spoken text:
no stage directions, no sound cues, no speaker labels.`

const showNotesSystemPrompt = `You write show notes for podcast episodes. Use markdown.
Start with a two sentence hook, then a bulleted list of the topics covered, then a short call to action.`

var styleGuides = map[models.Style]string{
	models.StyleConversational: "Relaxed and friendly, as if talking to a curious friend. Contractions and rhetorical questions are welcome.",
	models.StyleNews:           "Crisp and factual, like a news bulletin. Lead with the most important information and keep sentences short.",
	models.StyleStorytelling:   "Narrative and vivid. Build scenes, use concrete details and keep a sense of progression.",
	models.StyleEducational:    "Clear and structured, like a good lecturer. Define terms, use examples and recap key points.",
}

type outlinePayload struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Style       models.Style `json:"style"`
	StyleGuide  string       `json:"styleGuide"`
	SeedScript  string       `json:"seedScript"`
}

type segmentsPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Style       models.Style   `json:"style"`
	StyleGuide  string         `json:"styleGuide"`
	SeedScript  string         `json:"seedScript"`
	Outline     models.Outline `json:"outline"`
}

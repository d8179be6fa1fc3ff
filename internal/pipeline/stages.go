package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"podcast-generator/internal/llm"
	"podcast-generator/internal/models"
)

const (
	stageOutline   = "outline"
	stageSegments  = "segments"
	stageShowNotes = "show notes"
)

type outlineReply struct {
	Sections models.Outline `json:"sections"`
}

type segmentsReply struct {
	Segments models.Segments `json:"segments"`
}

func (p *Pipeline) generateOutline(ctx context.Context, req models.PodcastRequest) (models.Outline, error) {
	payload, err := json.Marshal(outlinePayload{
		Title:       req.Title,
		Description: req.Description,
		Style:       req.Style,
		StyleGuide:  styleGuides[req.Style],
		SeedScript:  req.Script,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outline payload: %w", err)
	}

	reply, err := p.llm.Complete(ctx, outlineSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", stageOutline, err)
	}

	return ParseOutline(reply)
}

// ParseOutline decodes an outline reply and normalizes its text fields.
func ParseOutline(reply string) (models.Outline, error) {
	var parsed outlineReply
	if err := llm.Decode(reply, &parsed); err != nil {
		return nil, contractError(stageOutline, "%v", err)
	}
	if len(parsed.Sections) == 0 {
		return nil, contractError(stageOutline, "reply has no sections")
	}

	outline := make(models.Outline, 0, len(parsed.Sections))
	for _, section := range parsed.Sections {
		points := make([]string, 0, len(section.TalkingPoints))
		for _, point := range section.TalkingPoints {
			if point = strings.TrimSpace(point); point != "" {
				points = append(points, point)
			}
		}
		outline = append(outline, models.OutlineSection{
			Title:         strings.TrimSpace(section.Title),
			Description:   strings.TrimSpace(section.Description),
			TalkingPoints: points,
		})
	}
	return outline, nil
}

func (p *Pipeline) generateSegments(ctx context.Context, req models.PodcastRequest, outline models.Outline) (models.Segments, error) {
	payload, err := json.Marshal(segmentsPayload{
		Title:       req.Title,
		Description: req.Description,
		Style:       req.Style,
		StyleGuide:  styleGuides[req.Style],
		SeedScript:  req.Script,
		Outline:     outline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal segments payload: %w", err)
	}

	reply, err := p.llm.Complete(ctx, segmentsSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", stageSegments, err)
	}

	return ParseSegments(reply)
}

// ParseSegments decodes a segments reply and trims every text field. Segments
// left with an empty script are kept.
func ParseSegments(reply string) (models.Segments, error) {
	var parsed segmentsReply
	if err := llm.Decode(reply, &parsed); err != nil {
		return nil, contractError(stageSegments, "%v", err)
	}
	if len(parsed.Segments) == 0 {
		return nil, contractError(stageSegments, "reply has no segments")
	}

	segments := make(models.Segments, len(parsed.Segments))
	for i, seg := range parsed.Segments {
		segments[i] = models.PodcastSegment{
			Title:   strings.TrimSpace(seg.Title),
			Summary: strings.TrimSpace(seg.Summary),
			Script:  strings.TrimSpace(seg.Script),
		}
	}
	return segments, nil
}

func (p *Pipeline) generateShowNotes(ctx context.Context, req models.PodcastRequest, segments models.Segments) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write show notes for the podcast episode %q.\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Episode description: %s\n", req.Description)
	}
	b.WriteString("Segments:\n")
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, seg.Title, seg.Summary)
	}

	notes, err := p.llm.Complete(ctx, showNotesSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", stageShowNotes, err)
	}
	return strings.TrimSpace(notes), nil
}

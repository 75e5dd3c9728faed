package upstream

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

const summarizerName = "SolutionAI"

// Summarizer generates solution guidance for incidents via the generative
// AI API. It is one of the solution-summary providers; failures here are
// slot-local like any other upstream failure.
type Summarizer struct {
	client *genai.Client
	model  string
}

// NewSummarizer builds the AI client. Returns an error when the API key is
// missing so callers can degrade at startup rather than per-request.
func NewSummarizer(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_AI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Summarizer{client: client, model: model}, nil
}

// SolutionContext carries the incident context handed to the model.
type SolutionContext struct {
	Description string
	Category    string
	DeviceName  string
	DeviceSpecs string
}

// GenerateSolutionPoints returns ordered troubleshooting steps for the
// incident. A model call that yields no parseable steps is an explicit-empty
// result (nil, nil), distinct from a transport failure.
func (s *Summarizer) GenerateSolutionPoints(ctx context.Context, sc SolutionContext) ([]string, error) {
	prompt := buildSolutionPrompt(sc)
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, transportError(summarizerName, err)
	}
	text := resp.Text()
	if text == "" {
		return nil, nil
	}
	return parseSolutionPoints(text), nil
}

func buildSolutionPrompt(sc SolutionContext) string {
	var contextParts []string
	if sc.DeviceSpecs != "" {
		contextParts = append(contextParts, "Device Specs: "+sc.DeviceSpecs)
	} else if sc.DeviceName != "" {
		contextParts = append(contextParts, "Device: "+sc.DeviceName)
	}
	if sc.Category != "" {
		contextParts = append(contextParts, "Category: "+sc.Category)
	}
	contextLine := ""
	if len(contextParts) > 0 {
		contextLine = "\nDevice/Category: " + strings.Join(contextParts, " | ")
	}

	return fmt.Sprintf(`You are an IT support technician. Provide exactly 6-8 numbered troubleshooting steps.

ISSUE: %s%s

RULES:
- Output ONLY numbered steps (1. 2. 3. etc.) - no intro or explanation
- Each step: 1-2 sentences, specific action
- Use imperative: "Check", "Verify", "Run", not "Your", "You", "Your device"
- Include actual commands or menu paths
- No markdown, asterisks, or bold formatting
- Progress from basic checks to advanced solutions

Steps:`, sc.Description, contextLine)
}

var (
	leadingNumber = regexp.MustCompile(`^\d+[.)]\s*`)
	leadingBullet = regexp.MustCompile(`^[-•*]+\s*`)
)

// parseSolutionPoints splits a model response into individual guidance
// points, stripping numbering, bullets, and markdown emphasis, and dropping
// header chatter.
func parseSolutionPoints(text string) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "here are") || strings.Contains(lower, "troubleshooting steps") ||
			strings.Contains(lower, "following are") || strings.Contains(lower, "below are") {
			continue
		}
		cleaned := leadingNumber.ReplaceAllString(line, "")
		cleaned = leadingBullet.ReplaceAllString(cleaned, "")
		cleaned = strings.ReplaceAll(cleaned, "**", "")
		cleaned = strings.ReplaceAll(cleaned, "*", "")
		cleaned = strings.TrimSpace(cleaned)
		if len(cleaned) >= 10 {
			points = append(points, cleaned)
		}
	}
	return points
}

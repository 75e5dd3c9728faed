package domain

// SummarySource tags where solution guidance came from.
type SummarySource string

const (
	SummarySourceKnowledgeBase SummarySource = "knowledge_base"
	SummarySourceGenerated     SummarySource = "generated"
)

// SolutionSummary is an ordered list of guidance points for an incident.
// Read-only and ephemeral per ticket view.
type SolutionSummary struct {
	IncidentNumber string
	Points         []string
	Source         SummarySource
	ArticleCount   int
	Confidence     string
}

// Empty reports whether the summary carries no guidance.
func (s SolutionSummary) Empty() bool {
	return len(s.Points) == 0
}

// KnowledgeArticle is a published knowledge-base article matched against
// an incident.
type KnowledgeArticle struct {
	Number  string
	Title   string
	Snippet string
}

package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/domain"
)

var descriptionWords = regexp.MustCompile(`\b\w{4,}\b`)

// ActionHistory is the remote-action-history subset of the diagnostics
// client.
type ActionHistory interface {
	RemoteActions(ctx context.Context, deviceName string, days, limit int) ([]domain.RemoteAction, error)
}

// Recommender ranks the device's recent remote actions against an
// incident's category and description.
type Recommender struct {
	actions ActionHistory
	logger  *zap.Logger
}

// NewRecommender constructs the recommender.
func NewRecommender(actions ActionHistory, logger *zap.Logger) *Recommender {
	return &Recommender{actions: actions, logger: logger}
}

// Recommend returns up to limit actions relevant to the incident, highest
// score first. When the incident carries no device name, one is extracted
// from its text; with no device at all an empty list comes back without a
// call, which is explicit-empty, not an error.
func (r *Recommender) Recommend(ctx context.Context, incident domain.Incident, deviceName string, limit int) ([]domain.RemoteAction, error) {
	if limit <= 0 {
		limit = DefaultActionLimit
	}
	if !domain.UsableDeviceName(deviceName) {
		deviceName = domain.ExtractDeviceName(incident.Description)
	}
	if deviceName == "" {
		deviceName = domain.ExtractDeviceName(incident.Title)
	}
	if deviceName == "" {
		r.logger.Debug("no device name determinable for incident",
			zap.String("number", incident.Number))
		return []domain.RemoteAction{}, nil
	}

	all, err := r.actions.RemoteActions(ctx, deviceName, DefaultLookbackDays, actionFetchBatchLimit)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return []domain.RemoteAction{}, nil
	}

	description := strings.TrimSpace(incident.Title + " " + incident.Description)

	type scored struct {
		score  float64
		action domain.RemoteAction
	}
	ranked := make([]scored, 0, len(all))
	index := make(map[string]int)

	for _, action := range all {
		score := scoreAction(action, incident.Category, description)
		if score <= 0 || action.Name == "" {
			continue
		}
		if i, seen := index[action.Name]; seen {
			// Duplicate action name: keep the higher score.
			if score > ranked[i].score {
				ranked[i] = scored{score: score, action: action}
			}
			continue
		}
		index[action.Name] = len(ranked)
		ranked = append(ranked, scored{score: score, action: action})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]domain.RemoteAction, len(ranked))
	for i, s := range ranked {
		out[i] = s.action
	}
	return out, nil
}

// scoreAction rates one action's relevance to the incident, 0-100.
func scoreAction(action domain.RemoteAction, category, description string) float64 {
	score := 0.0
	name := strings.ToLower(action.Name)
	purpose := strings.ToLower(action.Purpose)
	description = strings.ToLower(description)

	switch strings.ToLower(category) {
	case "hardware":
		if containsAny(name, "hardware", "health", "diagnostic", "disk", "memory", "cpu") {
			score += 40
		}
		if strings.Contains(description, "printer") && strings.Contains(name, "print") {
			score += 50
		}
	case "inquiry":
		if strings.Contains(description, "vpn") || strings.Contains(description, "network") {
			if containsAny(name, "vpn", "network", "connectivity", "ping", "dns") {
				score += 50
			}
		}
		if containsAny(description, "software", "app", "application") {
			if containsAny(name, "software", "app", "install", "update", "patch") {
				score += 50
			}
		}
		if strings.Contains(description, "print") && strings.Contains(name, "print") {
			score += 50
		}
	case "software":
		if containsAny(name, "software", "application", "app", "install", "update", "patch") {
			score += 40
		}
	case "network":
		if containsAny(name, "network", "vpn", "connectivity", "ping", "dns", "proxy") {
			score += 40
		}
	}

	switch purpose {
	case "remediation":
		score += 20
	case "data_collection":
		score += 10
	}

	switch action.Status {
	case domain.ActionStatusSuccess:
		score += 15
	case domain.ActionStatusFailure:
		// Failed runs still tell the technician what was already tried.
		score += 5
	}

	words := descriptionWords.FindAllString(description, 10)
	for _, word := range words {
		if strings.Contains(name, word) {
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

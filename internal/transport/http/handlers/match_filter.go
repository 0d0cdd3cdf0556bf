package handlers

import (
	"strings"

	"github.com/ozzus/fulbito/internal/domain/models"
)

func filterMatchesByPlayerID(matches []models.Match, playerID string) []models.Match {
	id := models.PlayerID(strings.TrimSpace(playerID))
	if id == "" || len(matches) == 0 {
		return matches
	}

	filtered := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if _, played := m.Side(id); played {
			filtered = append(filtered, m)
		}
	}

	return filtered
}

func cutMatchesByLimit(matches []models.Match, limit int) []models.Match {
	if limit <= 0 {
		return matches
	}
	if len(matches) <= limit {
		return matches
	}
	return matches[:limit]
}

package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AnalysisSettings is the analysis-settings document supplied with a run.
// Only the model_settings keys used for static-binary selection are read;
// the rest of the document belongs to the numerical engine.
type AnalysisSettings struct {
	ModelSettings ModelSettings `json:"model_settings"`
}

// ModelSettings carries the static-data variant selectors.
type ModelSettings struct {
	EventSet          string `json:"event_set"`
	EventOccurrenceID string `json:"event_occurrence_id"`
}

// LoadAnalysisSettings reads and parses an analysis_settings.json file.
func LoadAnalysisSettings(path string) (*AnalysisSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis settings: %w", err)
	}

	var s AnalysisSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse analysis settings %s: %w", path, err)
	}

	return &s, nil
}

// NormalizeDataSuffix converts a model-settings value to the static data
// file-name convention: lower case with spaces replaced by underscores.
// "Historical Set" → "historical_set".
func NormalizeDataSuffix(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", "_"))
}

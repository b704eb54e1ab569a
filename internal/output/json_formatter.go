package output

import (
	"encoding/json"

	"github.com/rroupski/retirement-planner/internal/domain"
)

// JSONFormatter serializes the analysis as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.ComprehensiveResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

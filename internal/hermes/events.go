package hermes

import "time"

// SimulationEvaluatedEvent summarizes one evaluation. It carries no applicant
// identity; only the derived figures.
type SimulationEvaluatedEvent struct {
	SimulationID   string    `json:"simulation_id"`
	PolicyVersion  string    `json:"policy_version"`
	ProductType    string    `json:"product_type"`
	Amount         string    `json:"amount"`
	TotalScore     float64   `json:"total_score"`
	Grade          int       `json:"grade"`
	Ratio          float64   `json:"ratio"`
	StressedRatio  float64   `json:"stressed_ratio"`
	AuthorityLevel string    `json:"authority_level"`
	Rule           string    `json:"rule"`
	Outcome        string    `json:"outcome"`
	CallerRole     string    `json:"caller_role"`
	RiskNote       string    `json:"risk_note"`
	Timestamp      time.Time `json:"timestamp"`
}

// SimulationRejectedEvent is published when input validation fails.
type SimulationRejectedEvent struct {
	SimulationID string    `json:"simulation_id"`
	Fields       []string  `json:"fields"`
	Timestamp    time.Time `json:"timestamp"`
}

// PolicyActivatedEvent announces a new active policy version.
type PolicyActivatedEvent struct {
	Version string `json:"version"`
}

package hermes

const (
	// SubjectPolicyActivated is published by the policy admin tooling after a
	// new row in policy_versions is marked active.
	SubjectPolicyActivated = "underwriter.policy.activated"

	StreamName   = "UNDERWRITER_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectSimulationEvaluated(simulationID string) string {
	return "underwriter.simulation." + simulationID + ".evaluated"
}

func SubjectSimulationRejected(simulationID string) string {
	return "underwriter.simulation." + simulationID + ".rejected"
}

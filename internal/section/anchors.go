package section

// anchors provides per-key retrieval hints appended to the question before it
// is embedded, steering similarity search toward the right part of the plan.
// Keys without an anchor embed the bare question.
var anchors = map[Key]string{
	Goals:                    "Project goals, objectives, targets, timelines in the plan",
	BMPs:                     "Best Management Practices, structural or non-structural measures",
	Pollutants:               "Pollutants and parameters like nitrogen, phosphorus, TSS, sediment, units and targets",
	ImplementationActivities: "Implementation activities, schedules, responsible parties, budgets",
	MonitoringMetrics:        "Monitoring metrics, methods, frequency, baselines and targets",
	OutreachActivities:       "Outreach and education activities, audiences, workshops",
	GeographicAreas:          "Geographic areas, subwatersheds, coverage in acres or km^2",
	Summary:                  "Executive summary, plan overview, purpose and scope",
}

// Anchor returns the retrieval hint for k, or empty string when none exists.
func (k Key) Anchor() string {
	return anchors[k]
}

// EmbeddingText returns the text embedded for k's retrieval query: the
// question plus the anchor hint when one exists.
func (k Key) EmbeddingText() string {
	q := k.Question()
	if a := k.Anchor(); a != "" {
		return q + "\nHINT: " + a
	}
	return q
}

package section

import "strings"

// aliases maps each canonical key to the synonym property names a model may
// use instead. Entries are matched after NormalizeName, so spelling here is
// free-form. The lists were tuned against real watershed-plan extractions.
var aliases = map[Key][]string{
	Identity: {
		"identity", "reportidentity", "planidentity", "metadata",
		"reportmeta", "planmeta", "id", "identityinfo",
	},
	Pollutants: {
		"pollutants", "pollutant", "contaminants", "impairments",
		"parameters", "pollution", "pollutantloads", "pollutantlist",
		"waterqualityparameters",
	},
	Goals: {
		"goals", "goal", "objectives", "objective", "targets", "target",
		"milestones", "milestone", "outcomes", "outcome", "goalstatements",
	},
	BMPs: {
		"bmps", "bmp", "bestmanagementpractices", "managementpractices",
		"practices", "measures", "controlmeasures", "structuralbmps",
		"nonstructuralbmps", "bestmgmtpractices", "bestmgtpractices",
	},
	ImplementationActivities: {
		"implementationactivities", "implementationactivity", "implementation",
		"actions", "action", "activities", "activity",
		"implementationactions", "implementationmeasures", "workplan",
		"workitems", "tasks", "task",
	},
	MonitoringMetrics: {
		"monitoringmetrics", "monitoringmetric", "monitoring", "metrics",
		"metric", "monitoringparameters", "wqmonitoring", "monitoringplan",
		"waterqualitymetrics", "indicators", "kpis", "kpi",
	},
	OutreachActivities: {
		"outreachactivities", "outreachactivity", "outreach", "education",
		"publicoutreach", "awareness", "awarenessactivities",
		"stakeholderengagement", "communication", "training",
		"participation", "communityengagement",
	},
	GeographicAreas: {
		"geographicareas", "geographicarea", "geography", "areas", "area",
		"watershed", "watersheds", "subwatershed", "subwatersheds",
		"huc", "huc12", "locations", "location", "scopearea", "projectarea",
	},
	Summary: {
		"summary", "summaries", "overview", "executivesummary",
		"abstract", "synopsis",
	},
}

// aliasToKey is the precomputed {normalized alias: canonical key} lookup.
var aliasToKey = func() map[string]Key {
	m := make(map[string]Key)
	for k, list := range aliases {
		for _, a := range list {
			m[NormalizeName(a)] = k
		}
	}
	return m
}()

// NormalizeName canonicalizes a property name for alias matching: lowercase,
// with whitespace, underscores, hyphens, dots, slashes, and parentheses
// stripped. "Best Management_Practices" and "bestmanagementpractices"
// normalize identically.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-', '.', '/', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveAlias maps a (possibly messy) property name to its canonical key.
// The second return is false when the name matches no known alias.
func ResolveAlias(name string) (Key, bool) {
	k, ok := aliasToKey[NormalizeName(name)]
	return k, ok
}

// Aliases returns the normalized alias set for k, used by the normalizer's
// nested-object search. The returned map is freshly allocated per call.
func Aliases(k Key) map[string]bool {
	set := make(map[string]bool, len(aliases[k]))
	for _, a := range aliases[k] {
		set[NormalizeName(a)] = true
	}
	return set
}

// Package decompose splits task descriptions into coordination plans by
// recognized domain.
package decompose

// DomainKeywords is the single source of truth for domain detection.
// A task's complexity is the number of distinct domains whose keywords
// appear in its description or labels.
var DomainKeywords = map[string][]string{
	"api": {
		"api",
		"endpoint",
		"endpoints",
		"rest",
		"grpc",
		"webhook",
	},
	"security": {
		"security",
		"auth",
		"authentication",
		"vulnerability",
		"cve",
		"encryption",
		"secrets",
	},
	"database": {
		"database",
		"schema",
		"migration",
		"sql",
		"query",
		"index",
	},
	"performance": {
		"performance",
		"latency",
		"optimize",
		"optimization",
		"profiling",
		"benchmark",
		"throughput",
	},
	"frontend": {
		"frontend",
		"ui",
		"css",
		"layout",
		"accessibility",
	},
	"infrastructure": {
		"infrastructure",
		"infra",
		"deploy",
		"deployment",
		"ci",
		"docker",
		"kubernetes",
	},
	"testing": {
		"testing",
		"test",
		"tests",
		"coverage",
		"regression",
		"flaky",
	},
	"docs": {
		"docs",
		"documentation",
		"readme",
		"guide",
		"changelog",
	},
}

// domainOrder fixes the order domains are detected and planned in, so
// identical inputs always produce identical plans.
var domainOrder = []string{
	"api",
	"security",
	"database",
	"performance",
	"frontend",
	"infrastructure",
	"testing",
	"docs",
}

// LabelComplex is the label that forces complex classification
// regardless of how many domains are detected.
const LabelComplex = "complex"

// fallbackDomain is planned when a complex label arrives with no
// recognized domain to hang sub-tasks on.
const fallbackDomain = "general"

package monarch

import "strings"

// Biolink association categories the preset tools pin down.
const (
	CategoryGeneInteractions = "biolink:PairwiseGeneToGeneInteraction"
	CategoryGeneDiseases     = "biolink:CausalGeneToDiseaseAssociation"
	CategoryGenePhenotypes   = "biolink:GeneToPhenotypicFeatureAssociation"
)

// categoryAliases maps friendly names to Biolink association categories.
// Keys are in normalized form: lowercase, hyphen-separated.
var categoryAliases = map[string]string{
	"gene-to-gene":      CategoryGeneInteractions,
	"interactions":      CategoryGeneInteractions,
	"gene-interactions": CategoryGeneInteractions,
	"gene-diseases":     CategoryGeneDiseases,
	"gene-to-disease":   CategoryGeneDiseases,
	"gene-phenotypes":   CategoryGenePhenotypes,
	"phenotype-genes":   CategoryGenePhenotypes,
}

// CanonicalCategory resolves a friendly alias like "gene-diseases" to its
// Biolink category. Matching ignores case and surrounding whitespace and
// treats spaces and underscores as hyphens. Values with no alias, including
// full Biolink category names, pass through unchanged, so canonical values
// are fixed points.
func CanonicalCategory(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	key = strings.ReplaceAll(key, " ", "-")
	key = strings.ReplaceAll(key, "_", "-")
	if canonical, ok := categoryAliases[key]; ok {
		return canonical
	}
	return category
}

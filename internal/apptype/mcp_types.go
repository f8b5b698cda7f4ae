package apptype

// GetEntityArgs represents the arguments for the get_entity tool
type GetEntityArgs struct {
	EntityID string `json:"entity_id" jsonschema:"The CURIE of the entity to fetch, e.g. MONDO:0019391 or HGNC:1097."`
}

// SearchEntitiesArgs represents the arguments for the search_entities tool
type SearchEntitiesArgs struct {
	Query  string `json:"q" jsonschema:"Free-text search over entity names and synonyms."`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default 20)."`
	Offset int    `json:"offset,omitempty" jsonschema:"Number of results to skip (for pagination)."`
}

// AssociationsArgs represents the arguments for the associations tool
type AssociationsArgs struct {
	EntityID    string   `json:"entity_id" jsonschema:"The CURIE of the entity whose associations to fetch."`
	Category    string   `json:"category" jsonschema:"Association category: a Biolink class or a friendly alias like gene-diseases or interactions."`
	Limit       int      `json:"limit,omitempty" jsonschema:"Page size requested from the API, clamped to 1-100 (default 20)."`
	Offset      int      `json:"offset,omitempty" jsonschema:"Row offset to start from."`
	MaxItems    *int     `json:"max_items,omitempty" jsonschema:"Cap on the total number of rows accumulated across pages (negative counts as zero)."`
	EvidenceMin *int     `json:"evidence_min,omitempty" jsonschema:"Keep only rows with at least this many pieces of evidence."`
	Sources     []string `json:"sources,omitempty" jsonschema:"Keep only rows from these knowledge sources."`
	Compact     *bool    `json:"compact,omitempty" jsonschema:"Shape rows to a compact fixed schema (default true); false returns raw rows."`
}

// GeneAssociationsArgs represents the arguments for the gene-centric preset
// tools (gene_interactions, gene_diseases)
type GeneAssociationsArgs struct {
	EntityID    string   `json:"entity_id" jsonschema:"The CURIE of the gene, e.g. HGNC:1097."`
	Limit       int      `json:"limit,omitempty" jsonschema:"Page size requested from the API, clamped to 1-100 (default 20)."`
	Offset      int      `json:"offset,omitempty" jsonschema:"Row offset to start from."`
	MaxItems    *int     `json:"max_items,omitempty" jsonschema:"Cap on the total number of rows accumulated across pages (negative counts as zero)."`
	EvidenceMin *int     `json:"evidence_min,omitempty" jsonschema:"Keep only rows with at least this many pieces of evidence."`
	Sources     []string `json:"sources,omitempty" jsonschema:"Keep only rows from these knowledge sources."`
	Compact     *bool    `json:"compact,omitempty" jsonschema:"Shape rows to a compact fixed schema (default true); false returns raw rows."`
}

// PhenotypeAssociationsArgs represents the arguments for the phenotype_genes tool
type PhenotypeAssociationsArgs struct {
	EntityID    string   `json:"entity_id" jsonschema:"The CURIE of the phenotype, e.g. HP:0001250."`
	Limit       int      `json:"limit,omitempty" jsonschema:"Page size requested from the API, clamped to 1-100 (default 20)."`
	Offset      int      `json:"offset,omitempty" jsonschema:"Row offset to start from."`
	MaxItems    *int     `json:"max_items,omitempty" jsonschema:"Cap on the total number of rows accumulated across pages (negative counts as zero)."`
	EvidenceMin *int     `json:"evidence_min,omitempty" jsonschema:"Keep only rows with at least this many pieces of evidence."`
	Sources     []string `json:"sources,omitempty" jsonschema:"Keep only rows from these knowledge sources."`
	Compact     *bool    `json:"compact,omitempty" jsonschema:"Shape rows to a compact fixed schema (default true); false returns raw rows."`
}

// NormalizeArgs represents the arguments for the normalize tool
type NormalizeArgs struct {
	Query string `json:"query" jsonschema:"A symbol, name, or identifier to resolve, e.g. TP53 or Marfan syndrome."`
	Taxon string `json:"taxon,omitempty" jsonschema:"Optional taxon label to restrict the match, e.g. Homo sapiens."`
}

// HealthArgs represents the arguments for the health_check tool
type HealthArgs struct{}

package apptype

// AssociationsResult is the envelope returned by association retrieval.
// Items hold either compact shaped rows or, when shaping is disabled, the
// rows exactly as the API sent them; Count always equals len(Items).
type AssociationsResult struct {
	Items    []map[string]any `json:"items"`
	Count    int              `json:"count"`
	Category string           `json:"category"`
	EntityID string           `json:"entity_id"`
}

// NormalizeResult is the best-match identity for a normalization query.
// All three fields are null when nothing matched; callers treat the
// all-null triple as "not found".
type NormalizeResult struct {
	ID       *string `json:"id"`
	FullName *string `json:"full_name"`
	Category *string `json:"category"`
}

// HealthResult reports the outcome of an upstream connectivity probe.
type HealthResult struct {
	OK        bool    `json:"ok"`
	LatencyMS float64 `json:"latency_ms"`
	Detail    string  `json:"detail"`
}

package monarch

// Association rows arrive in two silhouettes depending on the endpoint:
// flat, where subject/predicate/object are CURIE strings next to
// subject_label/object_label, and nested, where they are {id, label}
// mappings. shapeAssociation compacts either into a fixed small schema.
//
// Fallback order per output field, first non-empty hit wins, otherwise the
// key is omitted entirely (shaped rows never contain null values):
//
//	subject_id      subject mapping's "id", else subject string
//	subject_label   subject mapping's "label", else row "subject_label"
//	predicate       predicate mapping's "id", else predicate string
//	object_id       object mapping's "id", else object string
//	object_label    object mapping's "label", else row "object_label"
//	evidence_count  row "evidence_count" when numeric
//	source          row "aggregator_knowledge_source", else "provided_by"
func shapeAssociation(row map[string]any) map[string]any {
	shaped := make(map[string]any, 7)
	putNonEmpty(shaped, "subject_id", curieOf(row, "subject"))
	putNonEmpty(shaped, "subject_label", labelOf(row, "subject", "subject_label"))
	putNonEmpty(shaped, "predicate", curieOf(row, "predicate"))
	putNonEmpty(shaped, "object_id", curieOf(row, "object"))
	putNonEmpty(shaped, "object_label", labelOf(row, "object", "object_label"))
	if n, ok := numberField(row, "evidence_count"); ok {
		shaped["evidence_count"] = n
	}
	putNonEmpty(shaped, "source", sourceOf(row))
	return shaped
}

func putNonEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// curieOf extracts the identifier under key: a nested mapping yields its
// "id", a plain string is already the identifier.
func curieOf(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			return id
		}
	case string:
		return v
	}
	return ""
}

// labelOf extracts the human-readable label for the entity under key,
// preferring the nested mapping's "label" over the flat sibling field.
func labelOf(row map[string]any, key, flatKey string) string {
	if m, ok := row[key].(map[string]any); ok {
		if label, ok := m["label"].(string); ok && label != "" {
			return label
		}
	}
	if label, ok := row[flatKey].(string); ok {
		return label
	}
	return ""
}

// sourceOf resolves the reporting source of a row: the aggregator knowledge
// source when present, otherwise the provider. Empty and non-string values
// fall through.
func sourceOf(row map[string]any) string {
	for _, key := range []string{"aggregator_knowledge_source", "provided_by"} {
		if s, ok := row[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberField(row map[string]any, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// evidenceCount reads a row's evidence_count, treating missing or non-numeric
// values as zero.
func evidenceCount(row map[string]any) float64 {
	n, _ := numberField(row, "evidence_count")
	return n
}

package monarch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a fake API backend. Requests arrive
// sequentially, so handlers may record into plain variables.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)
	client := NewClient(&Config{
		BaseURL: backend.URL + "/",
		Timeout: 5 * time.Second,
		Retries: 1,
		Backoff: time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func writeAssociationsPage(w http.ResponseWriter, count, offset int) {
	rows := make([]map[string]any, count)
	for i := range rows {
		rows[i] = map[string]any{
			"subject":   fmt.Sprintf("S:%d", offset+i),
			"predicate": "biolink:interacts_with",
			"object":    "O:1",
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"associations": rows})
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func intPtr(n int) *int { return &n }

func TestAssociationsPaginatesUntilShortPage(t *testing.T) {
	var paths []string
	var offsets []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		q := r.URL.Query()
		offsets = append(offsets, q.Get("offset"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		size := 100
		if offset >= 200 {
			size = 37
		}
		writeAssociationsPage(w, size, offset)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Limit: 100, Raw: true})
	require.NoError(t, err)
	assert.Equal(t, 237, res.Count)
	assert.Len(t, res.Items, 237)
	assert.Equal(t, []string{"0", "100", "200"}, offsets)
	assert.Equal(t, CategoryGeneInteractions, res.Category)
	assert.Equal(t, "HGNC:1097", res.EntityID)
	require.NotEmpty(t, paths)
	assert.Equal(t, "/entity/HGNC%3A1097/biolink%3APairwiseGeneToGeneInteraction", paths[0])
}

func TestAssociationsPageSizeClamped(t *testing.T) {
	var limits []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limits = append(limits, r.URL.Query().Get("limit"))
		writeAssociationsPage(w, 1, 0)
	})
	client := newTestClient(t, handler)

	_, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, limits)
}

func TestAssociationsMaxItemsStopsEarly(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		writeAssociationsPage(w, 100, offset)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Limit: 100, MaxItems: intPtr(50), Raw: true})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Count)
	assert.Equal(t, 1, requests, "cap below one page must stop after the first fetch")
}

func TestAssociationsMaxItemsZero(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeAssociationsPage(w, 100, 0)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Limit: 100, MaxItems: intPtr(0), Raw: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, requests, "the cap is checked only after one page fetch")
}

func TestAssociationsMaxItemsNegative(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeAssociationsPage(w, 100, 0)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Limit: 100, MaxItems: intPtr(-1), Raw: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, requests, "a negative cap behaves like zero")
}

func TestAssociationsEvidenceFilter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"associations": [
			{"subject": "A", "evidence_count": 7},
			{"subject": "B", "evidence_count": 5},
			{"subject": "C", "evidence_count": 0},
			{"subject": "D"},
			{"subject": "E", "evidence_count": null}
		]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{EvidenceMin: intPtr(5), Raw: true})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "A", res.Items[0]["subject"])
	assert.Equal(t, "B", res.Items[1]["subject"])
}

func TestAssociationsEvidenceFilterZeroKeepsAll(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"associations": [
			{"subject": "A", "evidence_count": 2},
			{"subject": "B"}
		]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{EvidenceMin: intPtr(0), Raw: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count, "missing evidence counts as zero, which passes a zero threshold")
}

func TestAssociationsSourceFilter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"associations": [
			{"subject": "A", "aggregator_knowledge_source": "infores:biogrid"},
			{"subject": "B", "provided_by": "infores:biogrid"},
			{"subject": "C", "aggregator_knowledge_source": "infores:string"},
			{"subject": "D"},
			{"subject": "E", "aggregator_knowledge_source": "", "provided_by": "infores:biogrid"}
		]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Sources: []string{"infores:biogrid"}, Raw: true})
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, "A", res.Items[0]["subject"])
	assert.Equal(t, "B", res.Items[1]["subject"])
	assert.Equal(t, "E", res.Items[2]["subject"], "empty aggregator falls through to provided_by")
}

func TestAssociationsCompactShaping(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"associations": [
			{
				"subject": {"id": "HGNC:1100", "label": "BRCA1"},
				"predicate": {"id": "biolink:interacts_with"},
				"object": {"id": "HGNC:1101"},
				"evidence_count": 3,
				"provided_by": "infores:biogrid"
			},
			{
				"subject": "HGNC:1",
				"subject_label": "GENE1",
				"predicate": "biolink:causes",
				"object": "MONDO:1",
				"object_label": "disease one"
			}
		]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1100", "gene-to-gene", AssociationsOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)

	nested := res.Items[0]
	assert.Equal(t, "HGNC:1100", nested["subject_id"])
	assert.Equal(t, "BRCA1", nested["subject_label"])
	assert.Equal(t, "biolink:interacts_with", nested["predicate"])
	assert.Equal(t, "HGNC:1101", nested["object_id"])
	assert.Equal(t, float64(3), nested["evidence_count"])
	assert.Equal(t, "infores:biogrid", nested["source"])
	_, hasObjectLabel := nested["object_label"]
	assert.False(t, hasObjectLabel, "missing fields must be omitted, not null")

	flat := res.Items[1]
	assert.Equal(t, "HGNC:1", flat["subject_id"])
	assert.Equal(t, "GENE1", flat["subject_label"])
	assert.Equal(t, "biolink:causes", flat["predicate"])
	assert.Equal(t, "MONDO:1", flat["object_id"])
	assert.Equal(t, "disease one", flat["object_label"])
	_, hasEvidence := flat["evidence_count"]
	assert.False(t, hasEvidence)
	_, hasSource := flat["source"]
	assert.False(t, hasSource)
}

func TestAssociationsRowsKeyFallback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"associations": "not-a-list", "items": [{"subject": "A"}]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene",
		AssociationsOptions{Raw: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "A", res.Items[0]["subject"])
}

func TestAssociationsEmptyPage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene", AssociationsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestAssociationsUnknownCategoryPassesThrough(t *testing.T) {
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(w, `{}`)
	})
	client := newTestClient(t, handler)

	res, err := client.Associations(context.Background(), "X:1", "biolink:SomethingNew", AssociationsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "biolink:SomethingNew", res.Category)
	require.Len(t, paths, 1)
	assert.Equal(t, "/entity/X%3A1/biolink%3ASomethingNew", paths[0])
}

func TestAssociationsPropagatesTransportError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	client := newTestClient(t, handler)

	_, err := client.Associations(context.Background(), "HGNC:1097", "gene-to-gene", AssociationsOptions{})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestPresetsPinCategories(t *testing.T) {
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(w, `{}`)
	})
	client := newTestClient(t, handler)
	ctx := context.Background()

	_, err := client.GeneInteractions(ctx, "HGNC:1097", AssociationsOptions{})
	require.NoError(t, err)
	_, err = client.GeneDiseases(ctx, "HGNC:1097", AssociationsOptions{})
	require.NoError(t, err)
	_, err = client.PhenotypeGenes(ctx, "HP:0001250", AssociationsOptions{})
	require.NoError(t, err)

	require.Len(t, paths, 3)
	assert.Contains(t, paths[0], "biolink%3APairwiseGeneToGeneInteraction")
	assert.Contains(t, paths[1], "biolink%3ACausalGeneToDiseaseAssociation")
	assert.Contains(t, paths[2], "biolink%3AGeneToPhenotypicFeatureAssociation")
	assert.Contains(t, paths[2], "/entity/HP%3A0001250/")
}

func TestGetEntityEscapesID(t *testing.T) {
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(w, `{"id": "MONDO:0019391", "name": "Fanconi anemia"}`)
	})
	client := newTestClient(t, handler)

	body, err := client.GetEntity(context.Background(), "MONDO:0019391")
	require.NoError(t, err)
	assert.Equal(t, "Fanconi anemia", body["name"])
	require.Len(t, paths, 1)
	assert.Equal(t, "/entity/MONDO%3A0019391", paths[0])
}

func TestSearchEntitiesDefaults(t *testing.T) {
	var gotQuery map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"q": q.Get("q"), "limit": q.Get("limit"), "offset": q.Get("offset")}
		writeJSON(w, `{"total": 0, "items": []}`)
	})
	client := newTestClient(t, handler)

	body, err := client.SearchEntities(context.Background(), "marfan", 0, -3)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q": "marfan", "limit": "20", "offset": "0"}, gotQuery)
	assert.Equal(t, float64(0), body["total"])
}

func TestNormalizeIDFirstHit(t *testing.T) {
	var gotTaxon string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTaxon = r.URL.Query().Get("in_taxon_label")
		writeJSON(w, `{"items": [
			{"id": "HGNC:11998", "full_name": "tumor protein p53", "category": "biolink:Gene"},
			{"id": "HGNC:99999"}
		]}`)
	})
	client := newTestClient(t, handler)

	res, err := client.NormalizeID(context.Background(), "TP53", "Homo sapiens")
	require.NoError(t, err)
	require.NotNil(t, res.ID)
	assert.Equal(t, "HGNC:11998", *res.ID)
	require.NotNil(t, res.FullName)
	assert.Equal(t, "tumor protein p53", *res.FullName)
	require.NotNil(t, res.Category)
	assert.Equal(t, "biolink:Gene", *res.Category)
	assert.Equal(t, "Homo sapiens", gotTaxon)
}

func TestNormalizeIDWithoutTaxon(t *testing.T) {
	var taxonPresent bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		taxonPresent = r.URL.Query().Has("in_taxon_label")
		writeJSON(w, `{"items": []}`)
	})
	client := newTestClient(t, handler)

	res, err := client.NormalizeID(context.Background(), "TP53", "")
	require.NoError(t, err)
	assert.False(t, taxonPresent)
	assert.Nil(t, res.ID)
	assert.Nil(t, res.FullName)
	assert.Nil(t, res.Category)
}

func TestNormalizeIDSwallowsUpstreamError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	client := newTestClient(t, handler)

	res, err := client.NormalizeID(context.Background(), "TP53", "")
	require.NoError(t, err)
	assert.Nil(t, res.ID)
	assert.Nil(t, res.FullName)
	assert.Nil(t, res.Category)
}

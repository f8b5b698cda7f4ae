package monarch

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/longevity-genie/biolink-mcp-go/internal/apptype"
)

// DefaultLimit is the page size used when a caller supplies none.
const DefaultLimit = 20

// maxPageSize is the largest page the API serves per request.
const maxPageSize = 100

// Friendly aliases pinned by the preset operations.
const (
	aliasGeneInteractions = "gene-to-gene"
	aliasGeneDiseases     = "gene-diseases"
	aliasPhenotypeGenes   = "phenotype-genes"
)

// AssociationsOptions controls paging, filtering, and shaping for
// association retrieval. The zero value fetches from offset 0 with
// DefaultLimit-sized pages, applies no filters, and returns compact rows.
type AssociationsOptions struct {
	// Limit is the page size requested from the API, clamped to
	// [1, maxPageSize].
	Limit int
	// Offset is the row to start from.
	Offset int
	// MaxItems caps the total number of rows accumulated across pages. Nil
	// means no cap. Zero and negative values are honored after the first
	// page fetch, yielding an empty result.
	MaxItems *int
	// EvidenceMin drops rows whose evidence_count (missing counts as zero)
	// is below the threshold.
	EvidenceMin *int
	// Sources keeps only rows whose resolved knowledge source is listed.
	Sources []string
	// Raw disables compact shaping and returns rows as the API sent them.
	Raw bool
}

// Client wraps the Monarch Initiative API: entity lookups, full-text search,
// identifier normalization, and the association-retrieval pipeline.
type Client struct {
	transport *Transport
}

// NewClient builds a Client over a fresh Transport for cfg.
func NewClient(cfg *Config) *Client {
	return &Client{transport: NewTransport(cfg)}
}

// Close releases the client's HTTP resources. The client stays usable; the
// next request reopens the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// GetEntity fetches a single entity record by CURIE, e.g. "MONDO:0019391".
// The API's JSON body is returned as-is.
func (c *Client) GetEntity(ctx context.Context, entityID string) (map[string]any, error) {
	return c.transport.Get(ctx, "entity/"+escapePathSegment(entityID), nil)
}

// SearchEntities runs a full-text search over entities and returns the API's
// JSON body as-is.
func (c *Client) SearchEntities(ctx context.Context, query string, limit, offset int) (map[string]any, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return c.transport.Get(ctx, "search", params)
}

// Associations retrieves association rows for an entity, following the API's
// pagination until the window is exhausted or opts.MaxItems is reached, then
// applies the evidence and source filters and, unless opts.Raw is set,
// compact shaping.
//
// The category may be a Biolink class or a friendly alias; the resolved
// category is echoed in the result envelope.
func (c *Client) Associations(ctx context.Context, entityID, category string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	resolved := CanonicalCategory(category)
	path := "entity/" + escapePathSegment(entityID) + "/" + escapePathSegment(resolved)

	perPage := opts.Limit
	if perPage <= 0 {
		perPage = DefaultLimit
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	maxItems := opts.MaxItems
	if maxItems != nil && *maxItems < 0 {
		zero := 0
		maxItems = &zero
	}

	var rows []map[string]any
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(perPage))
		params.Set("offset", strconv.Itoa(offset))
		page, err := c.transport.Get(ctx, path, params)
		if err != nil {
			return nil, err
		}
		pageRows := extractRows(page)
		rows = append(rows, pageRows...)
		if maxItems != nil && len(rows) >= *maxItems {
			rows = rows[:*maxItems]
			break
		}
		if len(pageRows) < perPage {
			break
		}
		offset += perPage
	}
	slog.Debug("associations fetched", "entity", entityID, "category", resolved, "rows", len(rows))

	rows = filterEvidence(rows, opts.EvidenceMin)
	rows = filterSources(rows, opts.Sources)

	items := rows
	if !opts.Raw {
		items = make([]map[string]any, len(rows))
		for i, row := range rows {
			items[i] = shapeAssociation(row)
		}
	}
	if items == nil {
		items = []map[string]any{}
	}
	return &apptype.AssociationsResult{
		Items:    items,
		Count:    len(items),
		Category: resolved,
		EntityID: entityID,
	}, nil
}

// GeneInteractions lists pairwise gene-to-gene interactions for a gene.
func (c *Client) GeneInteractions(ctx context.Context, geneID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return c.Associations(ctx, geneID, aliasGeneInteractions, opts)
}

// GeneDiseases lists causal gene-to-disease associations for a gene.
func (c *Client) GeneDiseases(ctx context.Context, geneID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return c.Associations(ctx, geneID, aliasGeneDiseases, opts)
}

// PhenotypeGenes lists gene-to-phenotype associations for a phenotype.
func (c *Client) PhenotypeGenes(ctx context.Context, phenotypeID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return c.Associations(ctx, phenotypeID, aliasPhenotypeGenes, opts)
}

// NormalizeID resolves free text (a symbol, name, or CURIE) to the best
// matching entity, optionally restricted to a taxon label. A failed or empty
// search yields the all-null triple rather than an error; callers treat
// all-null as "not found".
func (c *Client) NormalizeID(ctx context.Context, query, taxon string) (*apptype.NormalizeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if taxon != "" {
		params.Set("in_taxon_label", taxon)
	}
	body, err := c.transport.Get(ctx, "search", params)
	if err != nil {
		slog.Debug("normalize search failed", "query", query, "error", err)
		return &apptype.NormalizeResult{}, nil
	}
	list, ok := body["items"].([]any)
	if !ok || len(list) == 0 {
		return &apptype.NormalizeResult{}, nil
	}
	top, ok := list[0].(map[string]any)
	if !ok {
		return &apptype.NormalizeResult{}, nil
	}
	return &apptype.NormalizeResult{
		ID:       stringField(top, "id"),
		FullName: stringField(top, "full_name"),
		Category: stringField(top, "category"),
	}, nil
}

// extractRows pulls the association list out of a page. Association
// endpoints name the list "associations"; other endpoints use "items". The
// first key holding a non-empty list wins; non-list values and entries that
// are not JSON objects are ignored.
func extractRows(page map[string]any) []map[string]any {
	for _, key := range []string{"associations", "items"} {
		list, ok := page[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		rows := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if row, ok := item.(map[string]any); ok {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			return rows
		}
	}
	return nil
}

func filterEvidence(rows []map[string]any, min *int) []map[string]any {
	if min == nil {
		return rows
	}
	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if evidenceCount(row) >= float64(*min) {
			kept = append(kept, row)
		}
	}
	return kept
}

func filterSources(rows []map[string]any, sources []string) []map[string]any {
	if len(sources) == 0 {
		return rows
	}
	allowed := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		allowed[s] = struct{}{}
	}
	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		src := sourceOf(row)
		if src == "" {
			continue
		}
		if _, ok := allowed[src]; ok {
			kept = append(kept, row)
		}
	}
	return kept
}

func stringField(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

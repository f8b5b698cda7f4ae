package biolink

import (
	"context"

	"github.com/longevity-genie/biolink-mcp-go/internal/apptype"
	"github.com/longevity-genie/biolink-mcp-go/internal/monarch"
)

// Service provides a library-first API for the Monarch knowledge graph
// without MCP transport.
type Service struct {
	client *monarch.Client
}

// AssociationsOptions mirrors the client's paging, filtering, and shaping
// knobs for package-mode users.
type AssociationsOptions struct {
	Limit       int
	Offset      int
	MaxItems    *int
	EvidenceMin *int
	Sources     []string
	Raw         bool
}

func (o AssociationsOptions) toInternal() monarch.AssociationsOptions {
	return monarch.AssociationsOptions{
		Limit:       o.Limit,
		Offset:      o.Offset,
		MaxItems:    o.MaxItems,
		EvidenceMin: o.EvidenceMin,
		Sources:     o.Sources,
		Raw:         o.Raw,
	}
}

// NewService constructs a Service with the provided config. A nil config
// reads the environment and falls back to the public API defaults.
func NewService(cfg *Config) *Service {
	var mc *monarch.Config
	if cfg == nil {
		mc = monarch.NewConfig()
	} else {
		mc = cfg.toInternal()
	}
	return &Service{client: monarch.NewClient(mc)}
}

// Close releases resources. The service stays usable afterwards; the next
// call reopens the connection pool.
func (s *Service) Close() error { return s.client.Close() }

// GetEntity fetches a single entity record by CURIE.
func (s *Service) GetEntity(ctx context.Context, entityID string) (map[string]any, error) {
	return s.client.GetEntity(ctx, entityID)
}

// SearchEntities runs a full-text search over entities.
func (s *Service) SearchEntities(ctx context.Context, query string, limit, offset int) (map[string]any, error) {
	return s.client.SearchEntities(ctx, query, limit, offset)
}

// Associations retrieves filtered, optionally shaped association rows.
func (s *Service) Associations(ctx context.Context, entityID, category string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return s.client.Associations(ctx, entityID, category, opts.toInternal())
}

// GeneInteractions lists pairwise gene-to-gene interactions for a gene.
func (s *Service) GeneInteractions(ctx context.Context, geneID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return s.client.GeneInteractions(ctx, geneID, opts.toInternal())
}

// GeneDiseases lists causal gene-to-disease associations for a gene.
func (s *Service) GeneDiseases(ctx context.Context, geneID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return s.client.GeneDiseases(ctx, geneID, opts.toInternal())
}

// PhenotypeGenes lists gene associations for a phenotype.
func (s *Service) PhenotypeGenes(ctx context.Context, phenotypeID string, opts AssociationsOptions) (*apptype.AssociationsResult, error) {
	return s.client.PhenotypeGenes(ctx, phenotypeID, opts.toInternal())
}

// NormalizeID resolves free text to the best matching entity identifier.
func (s *Service) NormalizeID(ctx context.Context, query, taxon string) (*apptype.NormalizeResult, error) {
	return s.client.NormalizeID(ctx, query, taxon)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/longevity-genie/biolink-mcp-go/internal/apptype"
	"github.com/longevity-genie/biolink-mcp-go/internal/buildinfo"
	"github.com/longevity-genie/biolink-mcp-go/internal/metrics"
	"github.com/longevity-genie/biolink-mcp-go/internal/monarch"
)

// healthProbeQuery is the minimal upstream search used by health_check.
const healthProbeQuery = "TP53"

// MCPServer handles MCP protocol communication
type MCPServer struct {
	server *mcp.Server
	client *monarch.Client
	cfg    *Config
}

// NewMCPServer creates a new MCP server around an API client.
func NewMCPServer(client *monarch.Client, cfg *Config) *MCPServer {
	if cfg == nil {
		cfg = NewConfig()
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "biolink-mcp-go",
		Version: buildinfo.Version,
	}, nil)

	s := &MCPServer{
		server: server,
		client: client,
		cfg:    cfg,
	}

	// initialize metrics from env (no-op if disabled)
	metrics.InitFromEnv()
	s.registerTools()
	return s
}

// toolDef binds one operation name to its advertised metadata and a typed
// registration thunk. The thunk exists because each tool's handler carries
// its own argument and result types.
type toolDef struct {
	name        string
	title       string
	description string
	register    func(s *MCPServer, tool *mcp.Tool)
}

// toolDefs is the registry of every exposed tool, in the order clients see
// them. Names are unprefixed here; the configured prefix is applied at
// registration time.
func (s *MCPServer) toolDefs() []toolDef {
	return []toolDef{
		{
			name:        "get_entity",
			title:       "Get Entity",
			description: "Fetch a single entity record by CURIE from the Monarch knowledge graph.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.GetEntityArgs]("GetEntityArgs")
				mcp.AddTool(s.server, tool, s.handleGetEntity)
			},
		},
		{
			name:        "search_entities",
			title:       "Search Entities",
			description: "Full-text search over entities by name or synonym.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.SearchEntitiesArgs]("SearchEntitiesArgs")
				mcp.AddTool(s.server, tool, s.handleSearchEntities)
			},
		},
		{
			name:        "associations",
			title:       "Associations",
			description: "Fetch associations for an entity in a given category, with pagination, evidence and source filters, and compact shaping.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.AssociationsArgs]("AssociationsArgs")
				tool.OutputSchema = mustSchema[apptype.AssociationsResult]("AssociationsResult (associations)")
				mcp.AddTool(s.server, tool, s.handleAssociations)
			},
		},
		{
			name:        "gene_interactions",
			title:       "Gene Interactions",
			description: "List pairwise gene-to-gene interactions for a gene.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.GeneAssociationsArgs]("GeneAssociationsArgs (interactions)")
				tool.OutputSchema = mustSchema[apptype.AssociationsResult]("AssociationsResult (gene_interactions)")
				mcp.AddTool(s.server, tool, s.handleGeneInteractions)
			},
		},
		{
			name:        "gene_diseases",
			title:       "Gene Diseases",
			description: "List causal gene-to-disease associations for a gene.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.GeneAssociationsArgs]("GeneAssociationsArgs (diseases)")
				tool.OutputSchema = mustSchema[apptype.AssociationsResult]("AssociationsResult (gene_diseases)")
				mcp.AddTool(s.server, tool, s.handleGeneDiseases)
			},
		},
		{
			name:        "phenotype_genes",
			title:       "Phenotype Genes",
			description: "List gene associations for a phenotype.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.PhenotypeAssociationsArgs]("PhenotypeAssociationsArgs")
				tool.OutputSchema = mustSchema[apptype.AssociationsResult]("AssociationsResult (phenotype_genes)")
				mcp.AddTool(s.server, tool, s.handlePhenotypeGenes)
			},
		},
		{
			name:        "normalize",
			title:       "Normalize Identifier",
			description: "Resolve a symbol, name, or identifier to the best-matching entity. Returns null fields when nothing matches.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.NormalizeArgs]("NormalizeArgs")
				tool.OutputSchema = mustSchema[apptype.NormalizeResult]("NormalizeResult")
				mcp.AddTool(s.server, tool, s.handleNormalize)
			},
		},
		{
			name:        "health_check",
			title:       "Health Check",
			description: "Probe upstream API connectivity and report latency.",
			register: func(s *MCPServer, tool *mcp.Tool) {
				tool.InputSchema = mustSchema[apptype.HealthArgs]("HealthArgs")
				tool.OutputSchema = mustSchema[apptype.HealthResult]("HealthResult")
				mcp.AddTool(s.server, tool, s.handleHealth)
			},
		},
	}
}

// registerTools walks the registry and hands every tool to the SDK.
func (s *MCPServer) registerTools() {
	for _, def := range s.toolDefs() {
		tool := &mcp.Tool{
			Name:        s.cfg.ToolPrefix + def.name,
			Title:       def.title,
			Description: def.description,
			Annotations: &mcp.ToolAnnotations{
				Title:        def.title,
				ReadOnlyHint: true,
			},
		}
		def.register(s, tool)
	}
}

// mustSchema builds the JSON schema for T at startup. A failure here is a
// programmer error in the argument types, so it panics like a bad template.
func mustSchema[T any](what string) *jsonschema.Schema {
	schema, err := jsonschema.For[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for %s: %v", what, err))
	}
	return schema
}

// handleGetEntity handles the get_entity tool call
func (s *MCPServer) handleGetEntity(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GetEntityArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("get_entity")
	var success bool
	defer func() { done(success) }()
	entityID := params.Arguments.EntityID

	body, err := s.client.GetEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("get entity %s: %w", entityID, err)
	}
	success = true
	return rawResult(body)
}

// handleSearchEntities handles the search_entities tool call
func (s *MCPServer) handleSearchEntities(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SearchEntitiesArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("search_entities")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	body, err := s.client.SearchEntities(ctx, args.Query, args.Limit, args.Offset)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", args.Query, err)
	}
	success = true
	return rawResult(body)
}

// handleAssociations handles the associations tool call
func (s *MCPServer) handleAssociations(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.AssociationsArgs],
) (*mcp.CallToolResultFor[apptype.AssociationsResult], error) {
	done := metrics.TimeTool("associations")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	res, err := s.client.Associations(ctx, args.EntityID, args.Category,
		associationOptions(args.Limit, args.Offset, args.MaxItems, args.EvidenceMin, args.Sources, args.Compact))
	if err != nil {
		return nil, fmt.Errorf("associations for %s: %w", args.EntityID, err)
	}
	success = true
	return associationsResult(res), nil
}

// handleGeneInteractions handles the gene_interactions tool call
func (s *MCPServer) handleGeneInteractions(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GeneAssociationsArgs],
) (*mcp.CallToolResultFor[apptype.AssociationsResult], error) {
	done := metrics.TimeTool("gene_interactions")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	res, err := s.client.GeneInteractions(ctx, args.EntityID,
		associationOptions(args.Limit, args.Offset, args.MaxItems, args.EvidenceMin, args.Sources, args.Compact))
	if err != nil {
		return nil, fmt.Errorf("gene interactions for %s: %w", args.EntityID, err)
	}
	success = true
	return associationsResult(res), nil
}

// handleGeneDiseases handles the gene_diseases tool call
func (s *MCPServer) handleGeneDiseases(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GeneAssociationsArgs],
) (*mcp.CallToolResultFor[apptype.AssociationsResult], error) {
	done := metrics.TimeTool("gene_diseases")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	res, err := s.client.GeneDiseases(ctx, args.EntityID,
		associationOptions(args.Limit, args.Offset, args.MaxItems, args.EvidenceMin, args.Sources, args.Compact))
	if err != nil {
		return nil, fmt.Errorf("gene diseases for %s: %w", args.EntityID, err)
	}
	success = true
	return associationsResult(res), nil
}

// handlePhenotypeGenes handles the phenotype_genes tool call
func (s *MCPServer) handlePhenotypeGenes(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.PhenotypeAssociationsArgs],
) (*mcp.CallToolResultFor[apptype.AssociationsResult], error) {
	done := metrics.TimeTool("phenotype_genes")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	res, err := s.client.PhenotypeGenes(ctx, args.EntityID,
		associationOptions(args.Limit, args.Offset, args.MaxItems, args.EvidenceMin, args.Sources, args.Compact))
	if err != nil {
		return nil, fmt.Errorf("phenotype genes for %s: %w", args.EntityID, err)
	}
	success = true
	return associationsResult(res), nil
}

// handleNormalize handles the normalize tool call
func (s *MCPServer) handleNormalize(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.NormalizeArgs],
) (*mcp.CallToolResultFor[apptype.NormalizeResult], error) {
	done := metrics.TimeTool("normalize")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	res, err := s.client.NormalizeID(ctx, args.Query, args.Taxon)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", args.Query, err)
	}
	success = true
	text := "no match"
	if res.ID != nil {
		text = *res.ID
	}
	return &mcp.CallToolResultFor[apptype.NormalizeResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: *res,
	}, nil
}

// handleHealth handles the health_check tool call
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health_check")
	var success bool
	defer func() { done(success) }()

	res := s.probeUpstream(ctx)
	success = res.OK
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: res.Detail}},
		StructuredContent: *res,
	}, nil
}

// probeUpstream times a minimal search against the API. Failures end up in
// the result detail, never as an error.
func (s *MCPServer) probeUpstream(ctx context.Context) *apptype.HealthResult {
	start := time.Now()
	_, err := s.client.SearchEntities(ctx, healthProbeQuery, 1, 0)
	latency := roundMillis(time.Since(start))
	if err != nil {
		return &apptype.HealthResult{
			OK:        false,
			LatencyMS: latency,
			Detail:    fmt.Sprintf("%T: %v", err, err),
		}
	}
	return &apptype.HealthResult{OK: true, LatencyMS: latency, Detail: "ok"}
}

// roundMillis converts a duration to milliseconds rounded to two decimals.
func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000*100) / 100
}

// associationOptions maps tool arguments onto client options. Compact
// defaults to true when the argument is omitted.
func associationOptions(limit, offset int, maxItems, evidenceMin *int, sources []string, compact *bool) monarch.AssociationsOptions {
	return monarch.AssociationsOptions{
		Limit:       limit,
		Offset:      offset,
		MaxItems:    maxItems,
		EvidenceMin: evidenceMin,
		Sources:     sources,
		Raw:         compact != nil && !*compact,
	}
}

// associationsResult pairs the structured envelope with a one-line summary.
func associationsResult(res *apptype.AssociationsResult) *mcp.CallToolResultFor[apptype.AssociationsResult] {
	return &mcp.CallToolResultFor[apptype.AssociationsResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%d %s associations for %s", res.Count, res.Category, res.EntityID),
		}},
		StructuredContent: *res,
	}
}

// rawResult renders an upstream JSON body as a text content block, the way
// passthrough tools report it.
func rawResult(body map[string]any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("SSE MCP server listening", "addr", addr, "endpoint", endpoint)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown closes the API client with a bounded wait. On timeout or error it
// logs and returns so process exit is never blocked indefinitely.
func (s *MCPServer) Shutdown(ctx context.Context) {
	closed := make(chan error, 1)
	go func() { closed <- s.client.Close() }()
	select {
	case err := <-closed:
		if err != nil {
			slog.Warn("client close failed", "error", err)
		}
	case <-ctx.Done():
		slog.Warn("client close timed out", "error", ctx.Err())
	}
}

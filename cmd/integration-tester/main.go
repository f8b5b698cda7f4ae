package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/longevity-genie/biolink-mcp-go/internal/apptype"
)

type StepResult struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type Report struct {
	SSEURL     string       `json:"sse_url"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Steps      []StepResult `json:"steps"`
	Passed     bool         `json:"passed"`
}

func main() {
	sseURL := flag.String("sse-url", "http://localhost:3001/sse", "SSE endpoint URL")
	prefix := flag.String("prefix", "biolink_", "Tool name prefix the server was started with")
	gene := flag.String("gene", "HGNC:1097", "Gene CURIE used for the association steps")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-tester", Version: "dev"}, nil)
	transport := mcp.NewSSEClientTransport(*sseURL, nil)

	start := time.Now()
	report := Report{SSEURL: *sseURL, StartedAt: start}
	steps := make([]StepResult, 0, 8)

	// Connect
	tConn := time.Now()
	connRes := StepResult{Name: "connect"}
	session, err := client.Connect(ctx, transport)
	if err != nil {
		connRes.Success = false
		connRes.Error = err.Error()
		connRes.ElapsedMs = elapsedMsSince(tConn)
		report.Steps = append(steps, connRes)
		report.DurationMs = elapsedMsSince(start)
		report.Passed = false
		emit(report)
		os.Exit(1)
	}
	defer session.Close()
	connRes.Success = true
	connRes.ElapsedMs = elapsedMsSince(tConn)
	steps = append(steps, connRes)

	// Individual steps
	steps = append(steps, runListTools(ctx, session, *prefix))
	steps = append(steps, runHealthCheck(ctx, session, *prefix))
	steps = append(steps, runSearchEntities(ctx, session, *prefix, "TP53"))
	steps = append(steps, runNormalize(ctx, session, *prefix, "BRCA1"))
	steps = append(steps, runGetEntity(ctx, session, *prefix, *gene))
	steps = append(steps, runGeneInteractions(ctx, session, *prefix, *gene))

	// finalize report
	report.Steps = steps
	report.DurationMs = elapsedMsSince(start)
	report.Passed = true
	for _, s := range steps {
		if !s.Success {
			report.Passed = false
			break
		}
	}

	emit(report)

	if !report.Passed {
		os.Exit(1)
	}
}

func emit(report Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

func runListTools(ctx context.Context, session *mcp.ClientSession, prefix string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "list_tools"}
	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	switch {
	case err != nil:
		res.Error = err.Error()
	case len(tools.Tools) == 0:
		res.Error = "no tools advertised"
	case !hasTool(tools.Tools, prefix+"associations"):
		res.Error = fmt.Sprintf("tool %sassociations not advertised", prefix)
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func hasTool(tools []*mcp.Tool, name string) bool {
	for _, t := range tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func runHealthCheck(ctx context.Context, session *mcp.ClientSession, prefix string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "health_check"}
	raw, _ := json.Marshal(apptype.HealthArgs{})
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: prefix + "health_check", Arguments: json.RawMessage(raw)})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runSearchEntities(ctx context.Context, session *mcp.ClientSession, prefix, query string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "search_entities"}
	args := apptype.SearchEntitiesArgs{Query: query, Limit: 3}
	raw, _ := json.Marshal(args)
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: prefix + "search_entities", Arguments: json.RawMessage(raw)})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runNormalize(ctx context.Context, session *mcp.ClientSession, prefix, query string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "normalize"}
	args := apptype.NormalizeArgs{Query: query}
	raw, _ := json.Marshal(args)
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: prefix + "normalize", Arguments: json.RawMessage(raw)})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runGetEntity(ctx context.Context, session *mcp.ClientSession, prefix, curie string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "get_entity"}
	args := apptype.GetEntityArgs{EntityID: curie}
	raw, _ := json.Marshal(args)
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: prefix + "get_entity", Arguments: json.RawMessage(raw)})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runGeneInteractions(ctx context.Context, session *mcp.ClientSession, prefix, gene string) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "gene_interactions"}
	maxItems := 5
	args := apptype.GeneAssociationsArgs{EntityID: gene, Limit: 5, MaxItems: &maxItems}
	raw, _ := json.Marshal(args)
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: prefix + "gene_interactions", Arguments: json.RawMessage(raw)})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func elapsedMsSince(t time.Time) int64 {
	return time.Since(t).Milliseconds()
}

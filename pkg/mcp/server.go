// Package mcp 通过 MCP (Model Context Protocol) 以只读工具的形式暴露注册表和文档
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
	"github.com/wentf9/nij/pkg/transport"
	"github.com/wentf9/nij/pkg/validator"
)

type Server struct {
	mcpServer   *mcp.Server
	registry    *config.Registry
	transport   transport.Transport
	concurrency int
}

func NewServer(version string, reg *config.Registry, t transport.Transport, concurrency int) *Server {
	s := &Server{registry: reg, transport: t, concurrency: concurrency}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: "nij", Version: version}, nil)
	s.registerTools()
	return s
}

// Run 在 stdio 上运行, ctx 结束时退出
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func boolPtr(b bool) *bool { return &b }

func (s *Server) registerTools() {
	readOnly := func(title string) *mcp.ToolAnnotations {
		return &mcp.ToolAnnotations{Title: title, ReadOnlyHint: true, OpenWorldHint: boolPtr(true)}
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_remotes",
		Description: "List the configured node info remotes and their locations, in registry order.",
		Annotations: readOnly("List Remotes"),
	}, s.handleListRemotes)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cat_remote",
		Description: "Fetch the node info document of one remote. found=false when the file does not exist yet.",
		Annotations: readOnly("Show Node Info"),
	}, s.handleCatRemote)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_remote",
		Description: "Fetch and validate node info documents. Patterns are globs over remote names; omit for all remotes.",
		Annotations: readOnly("Check Node Info"),
	}, s.handleCheckRemote)
}

type ListRemotesInput struct{}

type RemoteEntry struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type ListRemotesOutput struct {
	Remotes []RemoteEntry `json:"remotes"`
}

func (s *Server) handleListRemotes(ctx context.Context, req *mcp.CallToolRequest, input ListRemotesInput) (*mcp.CallToolResult, ListRemotesOutput, error) {
	out := ListRemotesOutput{Remotes: []RemoteEntry{}}
	for _, e := range s.registry.List() {
		out.Remotes = append(out.Remotes, RemoteEntry{Name: e.Name, Location: e.Path})
	}
	return nil, out, nil
}

type CatRemoteInput struct {
	Name string `json:"name" jsonschema:"Remote name as shown by list_remotes."`
}

type CatRemoteOutput struct {
	Name     string `json:"name"`
	Found    bool   `json:"found"`
	Document string `json:"document,omitempty"`
}

func (s *Server) handleCatRemote(ctx context.Context, req *mcp.CallToolRequest, input CatRemoteInput) (*mcp.CallToolResult, CatRemoteOutput, error) {
	out := CatRemoteOutput{Name: input.Name}
	loc, err := s.registry.Resolve(input.Name)
	if err != nil {
		return nil, out, err
	}
	doc, err := session.FetchDocument(ctx, s.transport, loc)
	if err != nil || doc == nil {
		return nil, out, err
	}
	out.Found = true
	out.Document = string(doc.Pretty())
	return nil, out, nil
}

type CheckRemoteInput struct {
	Patterns []string `json:"patterns,omitempty" jsonschema:"Glob patterns over remote names. Omit to check every remote."`
}

type CheckResult struct {
	Name     string   `json:"name"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type CheckRemoteOutput struct {
	OK      bool          `json:"ok"`
	Results []CheckResult `json:"results"`
}

func (s *Server) handleCheckRemote(ctx context.Context, req *mcp.CallToolRequest, input CheckRemoteInput) (*mcp.CallToolResult, CheckRemoteOutput, error) {
	names, err := s.registry.Filter(input.Patterns)
	if err != nil {
		return nil, CheckRemoteOutput{}, err
	}
	items, failed := runner.Gather(ctx, names, s.concurrency, func(ctx context.Context, name string) ([]string, error) {
		loc, err := s.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		doc, err := session.FetchDocument(ctx, s.transport, loc)
		if err != nil {
			return nil, err
		}
		return validator.Check(doc), nil
	})

	byName := make(map[string]CheckResult, len(names))
	for _, it := range items {
		byName[it.Name] = CheckResult{Name: it.Name, Warnings: it.Value}
	}
	for _, f := range failed {
		byName[f.Name] = CheckResult{Name: f.Name, Error: f.Err.Error()}
	}
	out := CheckRemoteOutput{OK: true, Results: make([]CheckResult, 0, len(names))}
	for _, name := range names {
		r := byName[name]
		if r.Error != "" || len(r.Warnings) > 0 {
			out.OK = false
		}
		out.Results = append(out.Results, r)
	}
	return nil, out, nil
}

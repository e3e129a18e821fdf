package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cratedoc/internal/db"
	"cratedoc/internal/docjson"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	db        *db.DB
	store     *Store
}

func NewServer(database *db.DB, store *Store) *Server {
	s := &Server{db: database, store: store}

	mcpServer := server.NewMCPServer(
		"cratedoc",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_crates",
			mcp.WithDescription("List crates with built documentation, including version and item count."),
		),
		s.handleListCrates,
	)

	mcpServer.AddTool(
		mcp.NewTool("lookup_item",
			mcp.WithDescription("Read one documented item by its fully qualified path (e.g. \"serde::Serialize\"). Returns markdown with cratedoc:// links to related items."),
			mcp.WithString("crate",
				mcp.Description("Crate name"),
				mcp.Required(),
			),
			mcp.WithString("path",
				mcp.Description("Fully qualified item path"),
				mcp.Required(),
			),
			mcp.WithString("version",
				mcp.Description("Crate version (default: latest built)"),
			),
		),
		s.handleLookupItem,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_items",
			mcp.WithDescription("Substring search over item names and paths in built documentation. Returns URIs that can be read as resources."),
			mcp.WithString("query",
				mcp.Description("Name or path fragment"),
				mcp.Required(),
			),
			mcp.WithArray("crates",
				mcp.Description("Optional list of crate names to search within"),
				mcp.Items(map[string]interface{}{"type": "string"}),
			),
			mcp.WithArray("kinds",
				mcp.Description("Optional list of item kinds to match (struct, trait, function, ...)"),
				mcp.Items(map[string]interface{}{"type": "string"}),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 20)"),
			),
		),
		s.handleSearchItems,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_implementations",
			mcp.WithDescription("List the implementation blocks attached to a type, in declaration order."),
			mcp.WithString("crate",
				mcp.Description("Crate name"),
				mcp.Required(),
			),
			mcp.WithString("path",
				mcp.Description("Fully qualified path of the type"),
				mcp.Required(),
			),
			mcp.WithString("version",
				mcp.Description("Crate version (default: latest built)"),
			),
		),
		s.handleListImplementations,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_implementors",
			mcp.WithDescription("List the implementation blocks implementing a trait."),
			mcp.WithString("crate",
				mcp.Description("Crate name"),
				mcp.Required(),
			),
			mcp.WithString("path",
				mcp.Description("Fully qualified path of the trait"),
				mcp.Required(),
			),
			mcp.WithString("version",
				mcp.Description("Crate version (default: latest built)"),
			),
		),
		s.handleListImplementors,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"cratedoc://{crate}/{version}/{path}",
			"Crate documentation item",
			mcp.WithTemplateDescription("Read a specific documented item as markdown. Tool results return these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

// resolveCrate finds the crate row for a name and optional version;
// "latest" and the empty string mean the most recently built version.
func (s *Server) resolveCrate(name, version string) (*db.Crate, error) {
	var crate *db.Crate
	var err error
	if version == "" || version == "latest" {
		crate, err = s.db.GetLatestCrate(name)
	} else {
		crate, err = s.db.GetCrate(name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up crate %s: %w", name, err)
	}
	if crate == nil {
		return nil, fmt.Errorf("crate %s is not in the index; build and export it first", name)
	}
	return crate, nil
}

// lookupItem resolves a path to its document item via the index
// database, then pulls the full item from the document artifact.
func (s *Server) lookupItem(crateName, version, path string) (*db.Crate, *docjson.Crate, docjson.Item, error) {
	crate, err := s.resolveCrate(crateName, version)
	if err != nil {
		return nil, nil, docjson.Item{}, err
	}
	row, err := s.db.GetItemByPath(crate.ID, path)
	if err != nil {
		return nil, nil, docjson.Item{}, fmt.Errorf("looking up %s: %w", path, err)
	}
	if row == nil {
		return nil, nil, docjson.Item{}, fmt.Errorf("no item %s in %s@%s", path, crate.Name, crate.Version)
	}
	doc, err := s.store.Load(crate.Name, crate.Version)
	if err != nil {
		return nil, nil, docjson.Item{}, fmt.Errorf("loading document: %w", err)
	}
	item, ok := doc.Index[docjson.ID(row.ItemID)]
	if !ok {
		return nil, nil, docjson.Item{}, fmt.Errorf("item %s missing from document index", row.ItemID)
	}
	return crate, doc, item, nil
}

// stringList decodes an optional array argument into strings.
func stringList(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(encoded, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Server) handleListCrates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	crates, err := s.db.ListCrates()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing crates: %v", err)), nil
	}

	type crateInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Items   int    `json:"items"`
	}
	infos := make([]crateInfo, 0, len(crates))
	for _, c := range crates {
		count, err := s.db.CountItems(c.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("counting items: %v", err)), nil
		}
		infos = append(infos, crateInfo{Name: c.Name, Version: c.Version, Items: count})
	}

	resultJSON, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleLookupItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	crateName, _ := args["crate"].(string)
	path, _ := args["path"].(string)
	if crateName == "" || path == "" {
		return mcp.NewToolResultError("missing required parameters: crate, path"), nil
	}
	version, _ := args["version"].(string)

	crate, doc, item, err := s.lookupItem(crateName, version, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(itemMarkdown(crate.Name, crate.Version, doc, item)), nil
}

func (s *Server) handleSearchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	kinds, err := stringList(args["kinds"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kinds format: %v", err)), nil
	}

	crateNames, err := stringList(args["crates"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid crates format: %v", err)), nil
	}
	var crateIDs []int
	if len(crateNames) > 0 {
		crateIDs, err = s.db.GetCrateIDsByNames(crateNames)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolving crates: %v", err)), nil
		}
		if len(crateIDs) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
	}

	limit := 20
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	items, err := s.db.SearchItems(query, crateIDs, kinds, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	crates, err := s.db.ListCrates()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing crates: %v", err)), nil
	}
	crateByID := make(map[int]db.Crate, len(crates))
	for _, c := range crates {
		crateByID[c.ID] = c
	}

	type hit struct {
		URI     string `json:"uri"`
		Path    string `json:"path"`
		Kind    string `json:"kind"`
		Crate   string `json:"crate"`
		Version string `json:"version"`
	}
	hits := make([]hit, 0, len(items))
	for _, it := range items {
		c := crateByID[it.CrateID]
		hits = append(hits, hit{
			URI:     docURI(c.Name, c.Version, it.Path),
			Path:    it.Path,
			Kind:    it.Kind,
			Crate:   c.Name,
			Version: c.Version,
		})
	}

	resultJSON, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleListImplementations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleRelations(req, db.RelationImpl)
}

func (s *Server) handleListImplementors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleRelations(req, db.RelationImplementor)
}

func (s *Server) handleRelations(req mcp.CallToolRequest, kind string) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	crateName, _ := args["crate"].(string)
	path, _ := args["path"].(string)
	if crateName == "" || path == "" {
		return mcp.NewToolResultError("missing required parameters: crate, path"), nil
	}
	version, _ := args["version"].(string)

	crate, err := s.resolveCrate(crateName, version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.db.GetItemByPath(crate.ID, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("looking up %s: %v", path, err)), nil
	}
	if item == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no item %s in %s@%s", path, crate.Name, crate.Version)), nil
	}

	ids, err := s.db.ListRelations(crate.ID, item.ItemID, kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing relations: %v", err)), nil
	}

	type relation struct {
		ID   string `json:"id"`
		Path string `json:"path,omitempty"`
		URI  string `json:"uri,omitempty"`
	}
	rels := make([]relation, 0, len(ids))
	for _, id := range ids {
		r := relation{ID: id}
		if p, ok := s.db.GetPath(crate.ID, id); ok {
			r.Path = p
			r.URI = docURI(crate.Name, crate.Version, p)
		}
		rels = append(rels, r)
	}

	resultJSON, _ := json.MarshalIndent(rels, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	trimmed := strings.TrimPrefix(uri, "cratedoc://")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	crate, doc, item, err := s.lookupItem(parts[0], parts[1], parts[2])
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     itemMarkdown(crate.Name, crate.Version, doc, item),
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}

package moosedb

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/moosedb/kit"
)

// RegisterMCP registers the moose gallery tools on an MCP server.
// PNG attachment and streaming export stay library-only: blobs and
// unbounded streams don't fit a tool result.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerGalleryTool(srv)
	s.registerGetTool(srv)
	s.registerRandomTool(srv)
	s.registerLatestTool(srv)
	s.registerOldestTool(srv)
	s.registerSaveTool(srv)
	s.registerBulkSaveTool(srv)
	s.registerDeleteTool(srv)
	s.registerStatsTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- gallery ---

type galleryRequest struct {
	Query  string `json:"query,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Order  string `json:"order,omitempty"`
}

func (s *Service) registerGalleryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_gallery",
		Description: "Browse the moose gallery: one ordered page, optionally filtered by a full-text search over names.",
		InputSchema: inputSchema(map[string]any{
			"query":  map[string]any{"type": "string", "description": "Full-text search over names; empty browses everything"},
			"offset": map[string]any{"type": "integer", "description": "Rows to skip (default 0)"},
			"limit":  map[string]any{"type": "integer", "description": "Max rows (default 12)"},
			"order":  map[string]any{"type": "string", "enum": []any{"newest", "oldest"}, "description": "Created-timestamp direction (default newest)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*galleryRequest)
		limit := r.Limit
		if limit == 0 {
			limit = 12
		}
		return s.GetGalleryPage(ctx, r.Query, r.Offset, limit, r.Order)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r galleryRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get ---

type nameRequest struct {
	Name string `json:"name"`
}

func decodeNameRequest(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r nameRequest
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

func (s *Service) registerGetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_get",
		Description: "Get one moose record by its exact name.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Moose name"},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*nameRequest)
		m, err := s.GetMooseByName(ctx, r.Name)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return map[string]string{"error": "moose not found"}, nil
		}
		return m, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeNameRequest)
}

// --- random / latest / oldest ---

func (s *Service) registerRandomTool(srv *mcp.Server) {
	s.registerPickTool(srv, "moose_random",
		"Get one random moose (modulo-biased over internal row ids).",
		s.GetRandomMoose)
}

func (s *Service) registerLatestTool(srv *mcp.Server) {
	s.registerPickTool(srv, "moose_latest",
		"Get the most recently created moose.",
		s.GetLatestMoose)
}

func (s *Service) registerOldestTool(srv *mcp.Server) {
	s.registerPickTool(srv, "moose_oldest",
		"Get the oldest moose.",
		s.GetOldestMoose)
}

func (s *Service) registerPickTool(srv *mcp.Server, name, desc string, pick func(context.Context) (*Moose, error)) {
	tool := &mcp.Tool{
		Name:        name,
		Description: desc,
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		m, err := pick(ctx)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return map[string]string{"error": "gallery is empty"}, nil
		}
		return m, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- save ---

type saveRequest struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Shade    string `json:"shade,omitempty"`
	HD       bool   `json:"hd,omitempty"`
	Shaded   bool   `json:"shaded,omitempty"`
	Extended bool   `json:"extended,omitempty"`
}

func mooseProperties() map[string]any {
	return map[string]any{
		"name":     map[string]any{"type": "string", "description": "Unique moose name"},
		"image":    map[string]any{"type": "string", "description": "Encoded pixel-grid payload"},
		"shade":    map[string]any{"type": "string", "description": "Palette/shading selector; empty means no shading"},
		"hd":       map[string]any{"type": "boolean", "description": "Large canvas"},
		"shaded":   map[string]any{"type": "boolean", "description": "Block-shading rendering"},
		"extended": map[string]any{"type": "boolean", "description": "Extended color palette"},
	}
}

func (r *saveRequest) moose() *Moose {
	return &Moose{
		Name:     r.Name,
		Image:    r.Image,
		Shade:    r.Shade,
		HD:       r.HD,
		Shaded:   r.Shaded,
		Extended: r.Extended,
	}
}

func (s *Service) registerSaveTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_save",
		Description: "Save a new moose. Fails if the name is already taken.",
		InputSchema: inputSchema(mooseProperties(), []string{"name", "image"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*saveRequest)
		m := r.moose()
		if err := s.SaveMoose(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r saveRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- bulk save ---

type bulkSaveRequest struct {
	Meese []saveRequest `json:"meese"`
}

func (s *Service) registerBulkSaveTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_bulk_save",
		Description: "Import many moose in one transaction. Records with already-taken names are skipped; any other failure aborts the whole batch.",
		InputSchema: inputSchema(map[string]any{
			"meese": map[string]any{
				"type":        "array",
				"items":       inputSchema(mooseProperties(), []string{"name", "image"}),
				"description": "Records to import",
			},
		}, []string{"meese"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*bulkSaveRequest)
		meese := make([]*Moose, len(r.Meese))
		for i := range r.Meese {
			meese[i] = r.Meese[i].moose()
		}
		n, err := s.BulkSaveMoose(ctx, meese)
		if err != nil {
			return nil, err
		}
		return map[string]int{"inserted": n, "offered": len(meese)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r bulkSaveRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- delete ---

func (s *Service) registerDeleteTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_delete",
		Description: "Delete a moose by name; its search-index entry goes with it. Deleting an absent name is a no-op.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Moose name to delete"},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*nameRequest)
		if err := s.DeleteMoose(ctx, r.Name); err != nil {
			return nil, err
		}
		return map[string]string{"status": "deleted", "name": r.Name}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeNameRequest)
}

// --- stats ---

func (s *Service) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "moose_stats",
		Description: "Get gallery statistics: record count and how many carry a cached PNG.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Stats(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

package mcpserver

import (
	"context"
	"net/http"

	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "1.0.0"

// Server exposes the query pipeline to MCP clients so agents can ask
// questions over the indexed corpus with the same grounding guarantees as
// the HTTP API.
type Server struct {
	ragService rag.Service
	docStore   ragModel.DocumentStore
	server     *mcp.Server
}

func NewServer(ragService rag.Service, docStore ragModel.DocumentStore) *Server {
	impl := &mcp.Implementation{
		Name:    "docrag",
		Version: Version,
	}

	s := &Server{
		ragService: ragService,
		docStore:   docStore,
		server:     mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s
}

// Handler returns an HTTP handler for mounting on the main router.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// QueryInput is the input schema for the query_documents tool.
type QueryInput struct {
	Question   string  `json:"question" jsonschema:"the question to answer from the indexed documents"`
	DocumentId string  `json:"document_id,omitempty" jsonschema:"restrict retrieval to one document"`
	TopK       int     `json:"top_k,omitempty" jsonschema:"maximum number of chunks to retrieve"`
	Threshold  float32 `json:"threshold,omitempty" jsonschema:"minimum similarity score for retrieved chunks"`
}

// QueryOutput is the output schema for the query_documents tool.
type QueryOutput struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Grounded  bool     `json:"grounded"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

type DocumentOutput struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Length int    `json:"length"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_documents",
		Description: "Answer a question from the indexed documents with citations; grounded=false means no relevant evidence was found",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested documents available for querying",
	}, s.handleList)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	answer, err := s.ragService.Query(ctx, ragModel.Query{
		Question:   input.Question,
		DocumentId: input.DocumentId,
		TopK:       input.TopK,
		Threshold:  input.Threshold,
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Grounded:  answer.Grounded,
	}, nil
}

func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, doc := range docs {
		output.Documents[i] = DocumentOutput{
			Id:     doc.Id,
			Name:   doc.Name,
			Length: doc.Length,
		}
	}
	return nil, output, nil
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

const wordURITemplate = "graphword://words/{word}"

var wordTemplate = uritemplate.MustNew(wordURITemplate)

// wordFromURI extracts the word of a graphword://words/{word} URI.
func wordFromURI(uri string) (string, bool) {
	values := wordTemplate.Match(uri)
	if values == nil {
		return "", false
	}
	word := values.Get("word").String()
	return word, word != ""
}

// Word returns the neighbourhood of a single word in the served graph.
func (s *Service) Word(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	word, ok := wordFromURI(uri)
	g := s.source.Current()
	if !ok || !g.HasNode(word) {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	body, err := json.Marshal(WordResult{
		Word:         word,
		Successors:   g.Successors(word),
		Predecessors: g.Predecessors(word),
		Degree:       g.Degree(word),
	})
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}

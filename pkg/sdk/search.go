package sdk

import (
	"context"
	"fmt"
	"time"

	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

// Search runs a natural language query over the client's scope. The query
// may mix free text with risk score, date and category filters, for example
// "diabetes risk score >= 20% after January 1, 2024". status accepts
// "pending_review", "reviewed" or "all".
func (c *Client) Search(ctx context.Context, query, status string) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	res, err := c.searchSvc.Search(ctx, searchuc.Request{
		Query:  query,
		Status: status,
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	return SearchResponse{
		Results:    fromScored(res.Results),
		Parsed:     fromParsed(res.Parsed),
		TotalFound: res.TotalFound,
	}, nil
}

package index

import (
	"encoding/json"
	"fmt"
)

type graphNode struct {
	ID    string `json:"id"` // target path
	Title string `json:"title"`
}

type graphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphJSON serializes the page link graph for the client-side graph view.
// Nodes and edges follow Pages() ordering, so output is deterministic.
func (ix *SiteIndex) GraphJSON() ([]byte, error) {
	payload := struct {
		Nodes []graphNode `json:"nodes"`
		Edges []graphEdge `json:"edges"`
	}{
		Nodes: []graphNode{},
		Edges: []graphEdge{},
	}

	for _, rec := range ix.Pages() {
		payload.Nodes = append(payload.Nodes, graphNode{ID: rec.TargetPath, Title: rec.Title})
		for _, linked := range rec.Links {
			if _, ok := ix.pages[linked]; !ok {
				continue
			}
			payload.Edges = append(payload.Edges, graphEdge{Source: rec.TargetPath, Target: linked})
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal link graph: %w", err)
	}
	return data, nil
}

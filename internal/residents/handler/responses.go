package handler

import "civic/internal/residents/models"

// QueryResponse wraps matching residents. Data is never null.
type QueryResponse struct {
	Data []models.Record `json:"data"`
}

// BreakdownResponse wraps population groups.
type BreakdownResponse struct {
	Data []models.Group `json:"data"`
}

// BracketsResponse lists age bracket tokens.
type BracketsResponse struct {
	Data []models.BracketInfo `json:"data"`
}

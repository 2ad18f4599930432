// Package dto provides data transfer objects for the audit endpoints.
package dto

import (
	"time"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
)

// AuditEntryResponse represents one chain link in API responses.
type AuditEntryResponse struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id,omitempty"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Details      map[string]string `json:"details,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Sequence     int64             `json:"sequence"`
	PreviousHash string            `json:"previous_hash"`
	ChainHash    string            `json:"chain_hash"`
}

// ListAuditEntriesResponse is a page of a chain.
type ListAuditEntriesResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// MapAuditEntryToResponse converts a domain audit entry to an API response.
func MapAuditEntryToResponse(entry *auditDomain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:           entry.ID.String(),
		UserID:       entry.UserID,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		Timestamp:    entry.Timestamp,
		Sequence:     entry.Sequence,
		PreviousHash: entry.PreviousHash,
		ChainHash:    entry.ChainHash,
	}
}

// MapAuditEntriesToListResponse converts a page of entries to an API response.
func MapAuditEntriesToListResponse(entries []*auditDomain.AuditEntry) ListAuditEntriesResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapAuditEntryToResponse(entry))
	}
	return ListAuditEntriesResponse{Data: data}
}

// ChainReportResponse is the verification result of one chain.
type ChainReportResponse struct {
	ResourceType      string `json:"resource_type"`
	ResourceID        string `json:"resource_id"`
	Length            int    `json:"length"`
	Valid             bool   `json:"valid"`
	FirstInvalidIndex *int   `json:"first_invalid_index,omitempty"`
}

// MapChainReportToResponse converts a chain report to an API response.
func MapChainReportToResponse(report *auditDomain.ChainReport) ChainReportResponse {
	response := ChainReportResponse{
		ResourceType: report.ResourceType,
		ResourceID:   report.ResourceID,
		Length:       report.Length,
		Valid:        report.Valid,
	}
	if !report.Valid {
		index := report.FirstInvalidIndex
		response.FirstInvalidIndex = &index
	}
	return response
}

package dto

// ContactUpdateRequest is one record of a bulk update, keyed by internal field names.
type ContactUpdateRequest struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// BulkUpdateRequest payload for PATCH /contacts.
type BulkUpdateRequest struct {
	Updates []ContactUpdateRequest `json:"updates"`
}

// PaginationResponse describes the page of a contact listing.
type PaginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

package documents

import "time"

const (
	uploadedMessage = "Document uploaded and processed successfully"
	deletedMessage  = "Document deleted successfully"
)

type uploadResponse struct {
	Message            string `json:"message"`
	DocumentID         string `json:"documentId"`
	OriginalURL        string `json:"original_url"`
	DigitalCopyContent string `json:"digital_copy_content"`
	Category           string `json:"category"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	OriginalURL        string  `json:"original_url"`
	DigitalCopyContent string  `json:"digital_copy_content"`
	Category           string  `json:"category"`
	Size               int64   `json:"size"`
	Timestamp          *string `json:"timestamp"`
}

type analyticsResponse struct {
	TotalDocuments      int            `json:"total_documents"`
	TotalSizeKB         float64        `json:"total_size_kb"`
	DocumentsByCategory map[string]int `json:"documents_by_category"`
	LastUpdated         string         `json:"last_updated"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toResponse(doc Document) DocumentResponse {
	resp := DocumentResponse{
		ID:                 doc.ID,
		Name:               doc.Name,
		Type:               doc.MimeType,
		OriginalURL:        doc.OriginalLocator,
		DigitalCopyContent: doc.DigitalCopyText,
		Category:           NormalizeCategory(doc.Category),
		Size:               doc.SizeBytes,
	}
	if !doc.CreatedAt.IsZero() {
		ts := doc.CreatedAt.UTC().Format(time.RFC3339)
		resp.Timestamp = &ts
	}
	return resp
}

func toAnalyticsResponse(a Analytics) analyticsResponse {
	return analyticsResponse{
		TotalDocuments:      a.TotalDocuments,
		TotalSizeKB:         a.TotalSizeKB,
		DocumentsByCategory: a.ByCategory,
		LastUpdated:         a.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

package documents

import "time"

// Document is the metadata record of one uploaded file. Records are created
// once by the upload pipeline and never updated.
type Document struct {
	ID              string
	Name            string
	MimeType        string
	OriginalLocator string
	DigitalCopyText string
	Category        string
	SizeBytes       int64
	// CreatedAt is assigned by the record store. The zero value means absent.
	CreatedAt time.Time
}

// UploadInput is one file received by the upload endpoint.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// Analytics summarizes the documents in one namespace.
type Analytics struct {
	TotalDocuments int
	TotalSizeKB    float64
	ByCategory     map[string]int
	GeneratedAt    time.Time
}

package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthdocs-backend/internal/extract"
	"healthdocs-backend/internal/llm"
	"healthdocs-backend/internal/shared/metrics"
	"healthdocs-backend/internal/shared/storage/object"
	"healthdocs-backend/internal/shared/telemetry"
	"healthdocs-backend/internal/shared/util"
)

const defaultDigitalCopyStem = "digital_copy"

var (
	// ErrNoOriginal is returned when a record has no retrievable original blob.
	ErrNoOriginal = fmt.Errorf("%w: original file missing", ErrNotFound)
	// ErrNoDigitalCopy is returned when a record has no extracted text.
	ErrNoDigitalCopy = fmt.Errorf("%w: digital copy missing", ErrNotFound)
)

// Service runs the upload pipeline and the read side over one blob store and
// one record store.
type Service struct {
	Store      object.Store
	Repo       Repo
	Extractor  extract.Extractor
	Classifier llm.Classifier
	AppID      string

	now       func() time.Time
	newSuffix func() string
}

// NewService wires a Service. Nil adapters fall back to their disabled forms,
// which route every upload to the Other category.
func NewService(store object.Store, repo Repo, extractor extract.Extractor, classifier llm.Classifier, appID string) *Service {
	if extractor == nil {
		extractor = extract.Disabled{}
	}
	if classifier == nil {
		classifier = llm.Disabled{}
	}
	return &Service{
		Store:      store,
		Repo:       repo,
		Extractor:  extractor,
		Classifier: classifier,
		AppID:      appID,
	}
}

func (s *Service) namespace(userID string) Namespace {
	return Namespace{AppID: s.AppID, UserID: userID}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) suffix() string {
	if s.newSuffix != nil {
		return s.newSuffix()
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Upload stores the original, derives text and category, and persists the
// record. Adapter failures never fail the upload; storage failures do.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	name := util.CleanFileName(in.FileName)
	if name == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	ns := s.namespace(userID)
	mimeType := extract.NormalizeMimeType(in.ContentType)
	if mimeType == "" {
		mimeType = extract.NormalizeMimeType(http.DetectContentType(in.Data))
	}
	key := ns.BlobKey(s.clock(), s.suffix(), name)

	locator, stored, err := s.Store.Put(ctx, key, mimeType, bytes.NewReader(in.Data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: store original: %w", ErrStorage, err)
	}

	text, category := s.derive(ctx, userID, mimeType, in.Data)

	size := in.Size
	if size <= 0 {
		size = int64(len(in.Data))
	}
	doc, err := s.Repo.Create(ctx, ns, Document{
		Name:            name,
		MimeType:        mimeType,
		OriginalLocator: locator,
		DigitalCopyText: text,
		Category:        category,
		SizeBytes:       size,
	})
	if err != nil {
		s.discardBlob(ctx, userID, locator)
		return Document{}, fmt.Errorf("%w: save record: %w", ErrStorage, err)
	}

	metrics.IncUpload(doc.Category)
	telemetry.InfoContext(ctx, "upload.stored", map[string]any{
		"user_id":     userID,
		"document_id": doc.ID,
		"mime_type":   mimeType,
		"size_bytes":  size,
		"stored":      stored,
		"category":    doc.Category,
		"has_text":    doc.DigitalCopyText != "",
	})
	return doc, nil
}

// derive returns the digital copy text and category for data.
func (s *Service) derive(ctx context.Context, userID, mimeType string, data []byte) (string, string) {
	var text string
	switch {
	case extract.NeedsOCR(mimeType):
		extracted, err := s.Extractor.Extract(ctx, data, mimeType)
		if err != nil {
			metrics.IncExtraction(metrics.OutcomeFailed)
			telemetry.WarnContext(ctx, "upload.extract_failed", map[string]any{
				"user_id":   userID,
				"mime_type": mimeType,
				"error":     err.Error(),
			})
			return "", CategoryOther
		}
		text = extracted
	case extract.IsPlainText(mimeType):
		text = strings.ToValidUTF8(string(data), "\uFFFD")
	default:
		metrics.IncExtraction(metrics.OutcomeSkipped)
		telemetry.InfoContext(ctx, "upload.extract_skipped", map[string]any{
			"user_id":   userID,
			"mime_type": mimeType,
		})
		return "", CategoryOther
	}

	if strings.TrimSpace(text) == "" {
		metrics.IncExtraction(metrics.OutcomeEmpty)
		return "", CategoryOther
	}
	metrics.IncExtraction(metrics.OutcomeSuccess)

	result, err := s.Classifier.Classify(ctx, llm.ClassifyInput{Text: text, Categories: Categories})
	if err != nil {
		metrics.IncClassification(metrics.OutcomeFailed)
		telemetry.WarnContext(ctx, "upload.classify_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return text, CategoryOther
	}
	if !IsValidCategory(result.Category) {
		metrics.IncClassification(metrics.OutcomeInvalidCategory)
		telemetry.WarnContext(ctx, "upload.category_invalid", map[string]any{
			"user_id":  userID,
			"category": result.Category,
		})
		return result.ProcessedText, CategoryOther
	}

	metrics.IncClassification(metrics.OutcomeSuccess)
	telemetry.InfoContext(ctx, "upload.classified", map[string]any{
		"user_id":   userID,
		"category":  result.Category,
		"reasoning": result.Reasoning,
	})
	return result.ProcessedText, result.Category
}

// discardBlob removes a blob whose record could not be written.
func (s *Service) discardBlob(ctx context.Context, userID, locator string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), locator); err != nil {
		metrics.IncBlobCleanupFailure()
		telemetry.ErrorContext(ctx, "upload.cleanup_failed", map[string]any{
			"user_id": userID,
			"locator": locator,
			"error":   err.Error(),
		})
	}
}

// List returns the caller's documents, newest first. Records without a
// timestamp sort last.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	docs, err := s.Repo.List(ctx, s.namespace(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}
	sortNewestFirst(docs)
	return docs, nil
}

func sortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].CreatedAt, docs[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

func (s *Service) get(ctx context.Context, ns Namespace, id string) (Document, error) {
	doc, err := s.Repo.Get(ctx, ns, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("%w: get record: %w", ErrStorage, err)
	}
	return doc, nil
}

// Original opens the stored original of a document. The caller closes the
// returned reader.
func (s *Service) Original(ctx context.Context, userID, id string) (Document, io.ReadCloser, error) {
	ns := s.namespace(userID)
	doc, err := s.get(ctx, ns, id)
	if err != nil {
		return Document{}, nil, err
	}
	if doc.OriginalLocator == "" || !ns.OwnsLocator(doc.OriginalLocator) {
		return Document{}, nil, ErrNoOriginal
	}
	rc, err := s.Store.Open(ctx, doc.OriginalLocator)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, nil, ErrNoOriginal
		}
		return Document{}, nil, fmt.Errorf("%w: open original: %w", ErrStorage, err)
	}
	return doc, rc, nil
}

// DigitalCopy returns the download name and text of a document's digital copy.
func (s *Service) DigitalCopy(ctx context.Context, userID, id string) (string, string, error) {
	doc, err := s.get(ctx, s.namespace(userID), id)
	if err != nil {
		return "", "", err
	}
	if doc.DigitalCopyText == "" {
		return "", "", ErrNoDigitalCopy
	}
	return DigitalCopyName(doc.Name), doc.DigitalCopyText, nil
}

// DigitalCopyName is <stem>_digital.txt for the original file name.
func DigitalCopyName(name string) string {
	stem := strings.TrimSpace(util.FileStem(name))
	if stem == "" {
		stem = defaultDigitalCopyStem
	}
	return stem + "_digital.txt"
}

// Delete removes a document record. The blob is removed first on a best
// effort basis; a missing blob is not an error.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	ns := s.namespace(userID)
	doc, err := s.get(ctx, ns, id)
	if err != nil {
		return err
	}

	if doc.OriginalLocator != "" && ns.OwnsLocator(doc.OriginalLocator) {
		if err := s.Store.Delete(ctx, doc.OriginalLocator); err != nil && !errors.Is(err, object.ErrNotFound) {
			metrics.IncBlobCleanupFailure()
			telemetry.WarnContext(ctx, "documents.blob_delete_failed", map[string]any{
				"user_id":     userID,
				"document_id": id,
				"error":       err.Error(),
			})
		}
	}

	if err := s.Repo.Delete(ctx, ns, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete record: %w", ErrStorage, err)
	}
	telemetry.InfoContext(ctx, "documents.deleted", map[string]any{
		"user_id":     userID,
		"document_id": id,
	})
	return nil
}

// Analytics counts the caller's documents per category and totals their size.
func (s *Service) Analytics(ctx context.Context, userID string) (Analytics, error) {
	docs, err := s.Repo.List(ctx, s.namespace(userID))
	if err != nil {
		return Analytics{}, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}

	byCategory := make(map[string]int, len(Categories))
	for _, c := range Categories {
		byCategory[c] = 0
	}
	var totalBytes int64
	for _, doc := range docs {
		byCategory[NormalizeCategory(doc.Category)]++
		totalBytes += doc.SizeBytes
	}
	return Analytics{
		TotalDocuments: len(docs),
		TotalSizeKB:    math.Round(float64(totalBytes)/1024*100) / 100,
		ByCategory:     byCategory,
		GeneratedAt:    s.clock().UTC(),
	}, nil
}

package expense

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CMCFame/Xpenseit/internal/extraction"
	"github.com/CMCFame/Xpenseit/internal/imaging"
)

// pdfRenderDPI is the resolution used when splitting uploaded PDFs into
// per-page receipt images.
const pdfRenderDPI = 200.0

// IDGenerator generates unique IDs for entries
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles the expense working set: receipt ingestion, extraction,
// normalization and user edits.
type Service struct {
	store       Store
	extractor   extraction.Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(store Store, extractor extraction.Extractor) *Service {
	return NewServiceWithDeps(store, extractor, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing.
// A store whose header carries no report date gets one stamped from the time
// source.
func NewServiceWithDeps(store Store, extractor extraction.Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	s := &Service{
		store:       store,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
	if s.store.Header().ReportDate.IsZero() {
		// DefaultHeader always passes header validation.
		_ = s.store.SetHeader(DefaultHeader(s.timeSource.Now()))
	}
	return s
}

// ProcessUpload ingests one uploaded file. A PDF yields one entry per page;
// an image yields a single entry. Extraction failures degrade to an entry
// with all fields absent rather than failing the upload.
func (s *Service) ProcessUpload(filename string, data []byte, contentType string) ([]*ExpenseEntry, error) {
	mimeType := normalizeMimeType(filename, contentType)

	if mimeType == "application/pdf" {
		pages, err := imaging.PDFPages(data, pdfRenderDPI)
		if err != nil {
			return nil, fmt.Errorf("splitting PDF: %w", err)
		}
		entries := make([]*ExpenseEntry, 0, len(pages))
		for i, page := range pages {
			name := filename
			if len(pages) > 1 {
				name = fmt.Sprintf("%s (page %d)", filename, i+1)
			}
			entry, err := s.ingestImage(name, page)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}

	pngData, err := imaging.ToPNG(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting image: %w", err)
	}
	entry, err := s.ingestImage(filename, pngData)
	if err != nil {
		return nil, err
	}
	return []*ExpenseEntry{entry}, nil
}

// ingestImage extracts fields from one receipt image and stores the
// normalized entry with the image attached.
func (s *Service) ingestImage(sourceName string, pngData []byte) (*ExpenseEntry, error) {
	raw, err := s.extractor.Extract(pngData, sourceName)
	if err != nil {
		slog.Error("Failed to extract receipt fields",
			"source", sourceName,
			"image_size", len(pngData),
			"error", err,
		)
		raw = extraction.RawFields{}
	}

	entry := NewEntryFromRaw(s.idGenerator.Generate(), raw, sourceName)
	entry.SetImage(pngData)

	if err := s.store.SaveEntry(entry); err != nil {
		return nil, fmt.Errorf("saving entry: %w", err)
	}
	return entry, nil
}

// EntryPatch carries user edits to an entry. Nil fields are left untouched;
// for TransactionDate an empty string clears the date.
type EntryPatch struct {
	MerchantName    *string  `json:"merchant_name,omitempty"`
	TransactionDate *string  `json:"transaction_date,omitempty"` // YYYY-MM-DD or "" to clear
	TransactionTime *string  `json:"transaction_time,omitempty"`
	TotalAmount     *float64 `json:"total_amount,omitempty"`
	CurrencyCode    *string  `json:"currency_code,omitempty"`
	PaymentMethod   *string  `json:"payment_method,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// UpdateEntry applies a patch to an existing entry. The entry ID is
// immutable; patched values go through the same normalization rules as
// extracted ones. The patch is all-or-nothing: a field that fails validation
// leaves the stored entry untouched.
func (s *Service) UpdateEntry(id string, patch EntryPatch) (*ExpenseEntry, error) {
	entry, err := s.store.GetEntry(id)
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}

	if patch.MerchantName != nil {
		entry.MerchantName = strings.TrimSpace(*patch.MerchantName)
	}
	if patch.TransactionDate != nil {
		if *patch.TransactionDate == "" {
			entry.TransactionDate = nil
		} else {
			d := normalizeDate(*patch.TransactionDate)
			if d == nil {
				return nil, fmt.Errorf("unrecognized date: %q", *patch.TransactionDate)
			}
			entry.TransactionDate = d
		}
	}
	if patch.TransactionTime != nil {
		entry.TransactionTime = normalizeTime(*patch.TransactionTime)
	}
	if patch.TotalAmount != nil {
		entry.TotalAmount = patch.TotalAmount
	}
	if patch.CurrencyCode != nil {
		entry.CurrencyCode = normalizeCurrency(*patch.CurrencyCode)
	}
	if patch.PaymentMethod != nil {
		entry.PaymentMethod = strings.TrimSpace(*patch.PaymentMethod)
	}
	if patch.Category != nil {
		entry.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}

	if err := s.store.SaveEntry(entry); err != nil {
		return nil, fmt.Errorf("saving entry: %w", err)
	}
	return entry, nil
}

// GetEntry retrieves an entry by ID
func (s *Service) GetEntry(id string) (*ExpenseEntry, error) {
	entry, err := s.store.GetEntry(id)
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns all entries in the working set
func (s *Service) ListEntries() ([]*ExpenseEntry, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry from the working set
func (s *Service) DeleteEntry(id string) error {
	if err := s.store.DeleteEntry(id); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// ClearEntries discards the whole working set
func (s *Service) ClearEntries() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	return nil
}

// Header returns the current report header
func (s *Service) Header() ReportHeader {
	return s.store.Header()
}

// SetHeader replaces the report header
func (s *Service) SetHeader(header ReportHeader) error {
	if err := s.store.SetHeader(header); err != nil {
		return fmt.Errorf("setting header: %w", err)
	}
	return nil
}

// normalizeMimeType lowercases the declared content type and falls back to
// the file extension when the client didn't send one.
func normalizeMimeType(filename, contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

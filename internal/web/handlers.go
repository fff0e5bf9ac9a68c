package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/CMCFame/Xpenseit/internal/expense"
	"github.com/CMCFame/Xpenseit/internal/report"
)

// maxFormSize caps uploads at 50MB to handle high-resolution phone photos
const maxFormSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleUpload ingests one uploaded receipt file (image or PDF)
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			msg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	entries, err := s.service.ProcessUpload(header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("Error processing upload", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListEntries returns all entries in the working set
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListEntries()
	if err != nil {
		slog.Error("Error listing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*expense.ExpenseEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetEntry returns a single entry
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Entry ID required", http.StatusBadRequest)
		return
	}
	entry, err := s.service.GetEntry(id)
	if err != nil {
		corsError(w, "Entry not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetEntryImage returns the receipt image for an entry
func (s *Server) handleGetEntryImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Entry ID required", http.StatusBadRequest)
		return
	}
	entry, err := s.service.GetEntry(id)
	if err != nil {
		corsError(w, "Entry not found", http.StatusNotFound)
		return
	}
	if entry.Image() == nil {
		corsError(w, "Entry has no image", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(entry.Image())
}

// handleUpdateEntry applies a user edit to an entry
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Entry ID required", http.StatusBadRequest)
		return
	}

	var patch expense.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := s.service.UpdateEntry(id, patch)
	if err != nil {
		slog.Error("Error updating entry", "id", id, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDeleteEntry removes an entry from the working set
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Entry ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteEntry(id); err != nil {
		corsError(w, "Entry not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleClearEntries discards the whole working set
func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearEntries(); err != nil {
		slog.Error("Error clearing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetHeader returns the current report header
func (s *Server) handleGetHeader(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.service.Header()); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleSetHeader replaces the report header
func (s *Server) handleSetHeader(w http.ResponseWriter, r *http.Request) {
	var header expense.ReportHeader
	if err := json.NewDecoder(r.Body).Decode(&header); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.SetHeader(header); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.service.Header()); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetRates returns the rate table for a base currency along with its
// source, so clients can tell when a fallback was used
func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		base = s.service.Header().BaseCurrency
	}

	result := s.rates.Fetch(r.Context(), base)

	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{
		"base":   result.Base,
		"rates":  result.Table,
		"source": result.Source.String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleReportPDF builds and returns the PDF report
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListEntries()
	if err != nil {
		slog.Error("Error listing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := report.BuildPDF(s.service.Header(), entries, s.logo)
	if err != nil {
		slog.Error("Error building PDF report", "error", err)
		corsError(w, "Error building report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="expense_report.pdf"`)
	w.Write(data)
}

// handleReportXLSX builds and returns the spreadsheet artifact
func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListEntries()
	if err != nil {
		slog.Error("Error listing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := report.BuildXLSX(s.service.Header(), entries)
	if err != nil {
		slog.Error("Error building workbook", "error", err)
		corsError(w, "Error building workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="expense_report.xlsx"`)
	w.Write(data)
}

// handleExportCSV returns the flat tabular export
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListEntries()
	if err != nil {
		slog.Error("Error listing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := report.BuildCSV(entries)
	if err != nil {
		slog.Error("Error building CSV export", "error", err)
		corsError(w, "Error building export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.Write(data)
}

// handleExportJSON returns the structured-record export
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListEntries()
	if err != nil {
		slog.Error("Error listing entries", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := report.BuildJSON(entries)
	if err != nil {
		slog.Error("Error building JSON export", "error", err)
		corsError(w, "Error building export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.json"`)
	w.Write(data)
}

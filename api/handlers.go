package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"img2pdf/internal/converter"
)

const defaultMaxMemory = 32 << 20 // 32 MB for multipart form parsing

type APIErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

type failureResponse struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type convertResponse struct {
	PDF      string            `json:"pdf"`
	Pages    int               `json:"pages"`
	Failures []failureResponse `json:"failures,omitempty"`
}

type thumbnailResponse struct {
	Thumbnail string `json:"thumbnail"`
}

// requestConfig holds the per-request overrides accepted in the "config" field.
type requestConfig struct {
	JPEGQuality int `json:"jpeg_quality"`
}

func writeJSONError(w http.ResponseWriter, message string, details interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errResponse := APIErrorResponse{
		Error:   message,
		Details: details,
	}
	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		slog.Error("Failed to write JSON error response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// jobRequest is the body of /convert and /thumbnail, sent either as JSON or
// as form fields with "config" holding a JSON object.
type jobRequest struct {
	Folder string         `json:"folder"`
	Out    string         `json:"out"`
	Config *requestConfig `json:"config,omitempty"`
}

// errOutsideRoot is returned when a requested folder escapes the served root.
var errOutsideRoot = errors.New("folder is outside the served root")

// Handler serves conversion jobs over HTTP. Folders are resolved inside root.
type Handler struct {
	cfg  *converter.Config
	root string
}

// NewHandler returns a Handler whose jobs start from cfg and may only touch
// folders below root. An empty root means the working directory.
func NewHandler(cfg *converter.Config, root string) *Handler {
	if cfg == nil {
		cfg = converter.NewDefaultConfig()
	}
	if root == "" {
		root = "."
	}
	return &Handler{cfg: cfg, root: root}
}

// Routes registers the handler endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", h.HandleConvert)
	mux.HandleFunc("/thumbnail", h.HandleThumbnail)
	return mux
}

func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	req, folder, ok := h.readJob(w, r)
	if !ok {
		return
	}

	// Copy so per-request overrides never leak into other requests.
	cfg := *h.cfg
	if req.Config != nil && req.Config.JPEGQuality != 0 {
		cfg.JPEGQuality = req.Config.JPEGQuality // converter.New resets it when out of range
	}

	out := sanitizeName(req.Out)
	slog.Info("Starting conversion", "folder", folder, "out", out)

	res, err := converter.New(&cfg).FolderToPDF(r.Context(), folder, out)
	if err != nil {
		slog.Error("PDF conversion failed", "folder", folder, "error", err)
		writeJobError(w, err)
		return
	}

	resp := convertResponse{PDF: res.PDF, Pages: res.Pages}
	for _, f := range res.Report.Failures {
		resp.Failures = append(resp.Failures, failureResponse{Path: f.Path, Stage: string(f.Stage), Error: f.Err.Error()})
	}
	writeJSON(w, resp)
}

func (h *Handler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	_, folder, ok := h.readJob(w, r)
	if !ok {
		return
	}

	path, err := converter.New(h.cfg).FolderToThumbnail(r.Context(), folder)
	if err != nil {
		slog.Error("Thumbnail generation failed", "folder", folder, "error", err)
		writeJobError(w, err)
		return
	}
	writeJSON(w, thumbnailResponse{Thumbnail: path})
}

// readJob validates the method, parses the body and resolves the folder
// inside the served root. It writes the error response itself and reports
// false on failure.
func (h *Handler) readJob(w http.ResponseWriter, r *http.Request) (jobRequest, string, bool) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Invalid request method", "Only POST is allowed", http.StatusMethodNotAllowed)
		return jobRequest{}, "", false
	}

	req, err := parseJobRequest(r)
	if err != nil {
		slog.Warn("Failed to parse request", "error", err)
		writeJSONError(w, "Failed to parse request data", err.Error(), http.StatusBadRequest)
		return jobRequest{}, "", false
	}
	if req.Folder == "" {
		writeJSONError(w, "Missing 'folder'", "Provide the folder holding the page images.", http.StatusBadRequest)
		return jobRequest{}, "", false
	}

	folder, err := resolveFolder(h.root, req.Folder)
	if err != nil {
		slog.Warn("Rejected folder", "folder", req.Folder, "root", h.root, "error", err)
		writeJSONError(w, "Folder not allowed", err.Error(), http.StatusForbidden)
		return jobRequest{}, "", false
	}
	return req, folder, true
}

func parseJobRequest(r *http.Request) (jobRequest, error) {
	var req jobRequest
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, defaultMaxMemory)).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	var err error
	if strings.HasPrefix(contentType, "multipart/form-data") {
		err = r.ParseMultipartForm(defaultMaxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return req, err
	}

	req.Folder = r.FormValue("folder")
	req.Out = r.FormValue("out")
	if configStr := r.FormValue("config"); configStr != "" {
		slog.Debug("Received config string", "config", configStr)
		var rc requestConfig
		if err := json.Unmarshal([]byte(configStr), &rc); err != nil {
			return req, fmt.Errorf("invalid 'config' JSON: %w", err)
		}
		req.Config = &rc
	}
	return req, nil
}

// resolveFolder maps folder onto the filesystem below root. Relative folders
// are taken relative to root; absolute ones must already lie inside it.
// Symlinks are followed on both sides when the paths exist.
func resolveFolder(root, folder string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(rootAbs); err == nil {
		rootAbs = resolved
	}

	target := folder
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, target)
	}
	target = filepath.Clean(target)
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, folder)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, folder)
	}
	return target, nil
}

func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, "Conversion timed out or was canceled by client", err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, converter.ErrInputNotFound):
		writeJSONError(w, "Input not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, converter.ErrNoImages):
		writeJSONError(w, "No images could be converted", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, converter.ErrDecodeFailure):
		writeJSONError(w, "Unreadable image", err.Error(), http.StatusUnprocessableEntity)
	default:
		writeJSONError(w, "Conversion failed", err.Error(), http.StatusInternalServerError)
	}
}

// sanitizeName keeps the output stem inside the folder.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\"", "")
	return strings.TrimSuffix(name, ".pdf")
}

package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var reportName = regexp.MustCompile(`^[a-z_]+$`)

// ReportsHandler serves JSON documents from the output directory.
type ReportsHandler struct {
	dir string
}

// NewReportsHandler creates a handler reading reports from dir.
func NewReportsHandler(dir string) *ReportsHandler {
	return &ReportsHandler{dir: dir}
}

type reportsResponse struct {
	Reports []string `json:"reports"`
}

// HandleListReports handles GET /reports, listing the available report names.
func (h *ReportsHandler) HandleListReports(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(h.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("%w: %v", ErrReadReport, err))
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() || !reportName.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	writeJSON(w, http.StatusOK, reportsResponse{Reports: names})
}

// HandleGetReport handles GET /reports/{name}, returning {name}.json as is.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !reportName.MatchString(name) {
		writeError(w, http.StatusBadRequest, "invalid_name", ErrInvalidReportName)
		return
	}

	body, err := os.ReadFile(filepath.Join(h.dir, name+".json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrReportNotFound, name))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("%w: %v", ErrReadReport, err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

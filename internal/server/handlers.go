package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"sort"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/downloads"
	"fetcharr/internal/models"
)

const maxBodyBytes = 64 << 10

type requestInput struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// handleInfo returns normalized metadata for a URL.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	info, err := s.pipeline.Info(r.Context(), req)
	if err != nil {
		logger.Pl.E("Info failed for %q: %v", req.URL, err)
		writeError(w, req.Platform, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Info: &info})
}

// handleDownload downloads the URL into the temp directory and returns its serve reference.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	a, err := s.pipeline.Download(r.Context(), req)
	if err != nil {
		logger.Pl.E("Download failed for %q: %v", req.URL, err)
		writeError(w, req.Platform, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, File: &a})
}

// handleServe streams a finished artifact and deletes it.
func (s *Server) handleServe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.files.Serve(w, r, q.Get("file"), q.Get("name")); err != nil {
		writeError(w, "", err)
	}
}

// handleFormats lists the configured format profiles.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := make([]models.FormatProfile, 0, len(s.settings.Profiles))
	for _, p := range s.settings.Profiles {
		formats = append(formats, p)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].Key < formats[j].Key })
	writeJSON(w, http.StatusOK, response{Success: true, Formats: formats})
}

// handleHealth reports the external tool versions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Success: true}
	for _, st := range s.pipeline.CheckTools(r.Context()) {
		switch st.Name {
		case "yt-dlp":
			res.YTDLP = &st
		case "ffmpeg":
			res.FFmpeg = &st
		}
		if !st.Installed {
			res.Success = false
		}
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// parseRequest reads url and format from the query, a form body or a JSON body.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (models.DownloadRequest, bool) {
	in, err := readInput(w, r)
	if err == nil {
		var req models.DownloadRequest
		if req, err = downloads.ParseRequest(s.settings, in.URL, in.Format); err == nil {
			return req, true
		}
	}
	logger.Pl.W("Rejected request from %s: %v", clientAddr(r), err)
	writeError(w, "", err)
	return models.DownloadRequest{}, false
}

func readInput(w http.ResponseWriter, r *http.Request) (requestInput, error) {
	if r.Method != http.MethodPost {
		q := r.URL.Query()
		return requestInput{URL: q.Get("url"), Format: q.Get("format")}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		var in requestInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return requestInput{}, fmt.Errorf("%w: %v", downloads.ErrInvalidRequest, err)
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return requestInput{}, fmt.Errorf("%w: %v", downloads.ErrInvalidRequest, err)
	}
	return requestInput{URL: r.FormValue("url"), Format: r.FormValue("format")}, nil
}

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coredeck/coredeck/internal/codec"
	"github.com/coredeck/coredeck/internal/registry"
)

type createIconRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	normalizeOptions
}

// handleCreateIcon normalizes an image and saves both source and result.
func (s *Server) handleCreateIcon(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req createIconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if !isValidName(req.Name) {
		writeError(w, http.StatusBadRequest, "invalid icon name (alphanumeric, dots, hyphens, underscores only)")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	existing, err := s.registry.GetIconByName(req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("icon %q already exists", req.Name))
		return
	}

	data, _, err := codec.DecodeString(req.Image)
	if err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	// Stored icons are always PNG; ICO is produced on export.
	req.Format = codec.FormatPNG
	p, err := s.process(data, req.normalizeOptions)
	if err != nil {
		writeErr(w, err)
		return
	}

	ic := &registry.Icon{
		ID:           registry.NewIconID(),
		Name:         req.Name,
		SourceType:   p.sourceType,
		SourceWidth:  p.sourceWidth,
		SourceHeight: p.sourceHeight,
		FinalSize:    p.config.FinalSize,
		Border:       p.config.Border,
		Filter:       p.filter,
		CreatedAt:    time.Now(),
	}
	if !p.result.Passthrough {
		box := p.result.Box
		ic.Box = &box
	}
	if err := s.storeIcon(ic, p); err != nil {
		writeErr(w, err)
		return
	}

	log.Printf("icon saved: %s (%s, %dx%d → %d)", ic.Name, ic.ID, ic.SourceWidth, ic.SourceHeight, ic.FinalSize)
	writeJSON(w, http.StatusCreated, ic)
}

// storeIcon writes the source and normalized blobs and saves ic.
func (s *Server) storeIcon(ic *registry.Icon, p *processed) error {
	s.blobMu.Lock()
	defer s.blobMu.Unlock()

	sourceKey, err := s.blobs.Put(p.source, p.sourceType)
	if err != nil {
		return fmt.Errorf("store source: %w", err)
	}
	iconKey := sourceKey
	if !p.result.Passthrough {
		if iconKey, err = s.blobs.Put(p.output, p.outputType); err != nil {
			return fmt.Errorf("store icon: %w", err)
		}
	}
	ic.SourceKey, ic.IconKey = sourceKey, iconKey
	return s.registry.SaveIcon(ic)
}

// handleListIcons returns all saved icons.
func (s *Server) handleListIcons(w http.ResponseWriter, r *http.Request) {
	icons, err := s.registry.ListIcons()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list icons: %v", err))
		return
	}
	if icons == nil {
		icons = []*registry.Icon{}
	}
	writeJSON(w, http.StatusOK, icons)
}

// lookupIcon resolves the {id} path parameter, writing 404 when absent.
func (s *Server) lookupIcon(w http.ResponseWriter, r *http.Request) *registry.Icon {
	key := pathParam(r, "id")
	ic, err := s.registry.ResolveIcon(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("get icon: %v", err))
		return nil
	}
	if ic == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("icon %q not found", key))
		return nil
	}
	return ic
}

// handleGetIcon returns icon metadata.
func (s *Server) handleGetIcon(w http.ResponseWriter, r *http.Request) {
	if ic := s.lookupIcon(w, r); ic != nil {
		writeJSON(w, http.StatusOK, ic)
	}
}

// handleIconImage returns the normalized image. ?format=ico re-encodes it;
// ?variant=source returns the original upload.
func (s *Server) handleIconImage(w http.ResponseWriter, r *http.Request) {
	ic := s.lookupIcon(w, r)
	if ic == nil {
		return
	}

	key := ic.IconKey
	if r.URL.Query().Get("variant") == "source" {
		key = ic.SourceKey
	}
	data, err := s.blobs.Get(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("read icon: %v", err))
		return
	}

	mediaType := codec.Sniff(data)
	if format := r.URL.Query().Get("format"); format != "" {
		want := codec.MediaType(format)
		if want == "" {
			writeErr(w, fmt.Errorf("%w: output format %q", codec.ErrUnsupported, format))
			return
		}
		if want != mediaType {
			img, _, err := codec.Decode(data, s.normalizer.Config())
			if err != nil {
				writeErr(w, err)
				return
			}
			if data, mediaType, err = codec.Encode(img, format); err != nil {
				writeErr(w, err)
				return
			}
		}
	}

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// deleteIcon removes ic and any of its blobs no other icon references.
func (s *Server) deleteIcon(ic *registry.Icon) error {
	s.blobMu.Lock()
	defer s.blobMu.Unlock()

	if err := s.registry.DeleteIcon(ic.ID); err != nil {
		return err
	}
	for _, key := range []string{ic.SourceKey, ic.IconKey} {
		refs, err := s.registry.CountBlobRefs(key)
		if err != nil || refs > 0 {
			continue
		}
		if err := s.blobs.Delete(key); err != nil {
			log.Printf("delete blob %s: %v", key, err)
		}
	}
	return nil
}

// handleDeleteIcon removes an icon and any blobs no other icon references.
func (s *Server) handleDeleteIcon(w http.ResponseWriter, r *http.Request) {
	ic := s.lookupIcon(w, r)
	if ic == nil {
		return
	}
	if err := s.deleteIcon(ic); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("delete icon: %v", err))
		return
	}

	log.Printf("icon deleted: %s (%s)", ic.Name, ic.ID)
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coredeck/coredeck/internal/codec"
	"github.com/coredeck/coredeck/internal/icon"
)

var errBadRequest = errors.New("invalid request")

// normalizeOptions overrides the daemon's icon settings for one request.
type normalizeOptions struct {
	FinalSize *int   `json:"final_size,omitempty"`
	Border    *int   `json:"border,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Format    string `json:"format,omitempty"` // "png" (default) or "ico"
}

type normalizeRequest struct {
	// Image is a data: URI or bare base64. The response uses the same form.
	Image string `json:"image"`
	normalizeOptions
}

type normalizeResponse struct {
	Image        string            `json:"image"`
	MediaType    string            `json:"media_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	SourceWidth  int               `json:"source_width"`
	SourceHeight int               `json:"source_height"`
	Box          *icon.BoundingBox `json:"box,omitempty"`
	Placement    *icon.Placement   `json:"placement,omitempty"`
	Passthrough  bool              `json:"passthrough"`
}

// processed is the outcome of decode → normalize → encode.
type processed struct {
	source       []byte
	sourceType   string
	sourceWidth  int
	sourceHeight int
	filter       string
	config       icon.Config
	result       *icon.Result
	output       []byte
	outputType   string
}

func (p *processed) response(image string) normalizeResponse {
	resp := normalizeResponse{
		Image:        image,
		MediaType:    p.outputType,
		Width:        p.result.Image.Bounds().Dx(),
		Height:       p.result.Image.Bounds().Dy(),
		SourceWidth:  p.sourceWidth,
		SourceHeight: p.sourceHeight,
		Passthrough:  p.result.Passthrough,
	}
	if !p.result.Passthrough {
		box, placement := p.result.Box, p.result.Placement
		resp.Box, resp.Placement = &box, &placement
	}
	return resp
}

// normalizerFor returns the daemon normalizer, or a per-request one when
// the options override any setting.
func (s *Server) normalizerFor(o normalizeOptions) (*icon.Normalizer, string, error) {
	if o.FinalSize == nil && o.Border == nil && o.Filter == "" {
		return s.normalizer, s.cfg.Filter, nil
	}

	cfg := s.normalizer.Config()
	if o.FinalSize != nil {
		cfg.FinalSize = *o.FinalSize
	}
	if o.Border != nil {
		cfg.Border = *o.Border
	}

	filter := s.cfg.Filter
	if o.Filter != "" {
		filter = o.Filter
	}
	scaler, err := icon.ScalerByName(filter)
	if err != nil {
		return nil, "", err
	}
	n, err := icon.New(cfg, scaler)
	if err != nil {
		return nil, "", err
	}
	return n, filter, nil
}

// process decodes data, normalizes it and encodes the result. A source
// without visible content is returned byte for byte.
func (s *Server) process(data []byte, o normalizeOptions) (*processed, error) {
	if codec.MediaType(o.Format) == "" {
		return nil, fmt.Errorf("%w: output format %q", codec.ErrUnsupported, o.Format)
	}
	n, filter, err := s.normalizerFor(o)
	if err != nil {
		return nil, err
	}

	img, _, err := codec.Decode(data, n.Config())
	if err != nil {
		return nil, err
	}
	res, err := n.NormalizeResult(img)
	if err != nil {
		return nil, err
	}

	p := &processed{
		source:       data,
		sourceType:   codec.Sniff(data),
		sourceWidth:  img.Bounds().Dx(),
		sourceHeight: img.Bounds().Dy(),
		filter:       filter,
		config:       n.Config(),
		result:       res,
	}
	if res.Passthrough {
		p.output, p.outputType = data, p.sourceType
		return p, nil
	}
	p.output, p.outputType, err = codec.Encode(res.Image, o.Format)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// handleNormalize normalizes an image without storing it. JSON bodies get a
// JSON response; raw image bodies get the encoded image back.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if isRawImage(r.Header.Get("Content-Type")) {
		s.normalizeRaw(w, r)
		return
	}

	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	data, isURI, err := codec.DecodeString(req.Image)
	if err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	p, err := s.process(data, req.normalizeOptions)
	if err != nil {
		writeErr(w, err)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(p.output)
	if isURI {
		encoded = codec.DataURI(p.outputType, p.output)
	}
	writeJSON(w, http.StatusOK, p.response(encoded))
}

func (s *Server) normalizeRaw(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := s.process(data, opts)
	if err != nil {
		writeErr(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", p.outputType)
	h.Set("X-Icon-Passthrough", strconv.FormatBool(p.result.Passthrough))
	if !p.result.Passthrough {
		h.Set("X-Icon-Box", p.result.Box.String())
	}
	w.WriteHeader(http.StatusOK)
	w.Write(p.output)
}

func optionsFromQuery(q url.Values) (normalizeOptions, error) {
	var o normalizeOptions
	for _, f := range []struct {
		name string
		dst  **int
	}{{"final_size", &o.FinalSize}, {"border", &o.Border}} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("%w: %s=%q", errBadRequest, f.name, v)
		}
		*f.dst = &n
	}
	o.Filter = q.Get("filter")
	o.Format = q.Get("format")
	return o, nil
}

func isRawImage(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "application/octet-stream")
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/proof"
)

// Renderer produces proof documents.
type Renderer interface {
	Render(ctx context.Context, rec database.Configuration, code string) (*proof.Result, error)
}

// ProofHandler serves proof documents for stored configurations.
type ProofHandler struct {
	renderer      Renderer
	debugRenderer Renderer
}

// NewProofHandler creates a proof handler. debugRenderer serves
// ?format=debug and may be nil.
func NewProofHandler(renderer, debugRenderer Renderer) *ProofHandler {
	return &ProofHandler{renderer: renderer, debugRenderer: debugRenderer}
}

// Proof renders the proof PDF, or its JSON report with ?format=report.
func (h *ProofHandler) Proof(w http.ResponseWriter, r *http.Request) {
	reader, rec := loadConfiguration(w, r)
	if rec == nil {
		return
	}

	code := rec.ShortCode
	if code == "" && rec.ID != "" {
		c, err := reader.ShortCodeFor(r.Context(), rec.ID)
		if err != nil {
			log.Printf("WARNING: failed to get short code for %s: %v", rec.ID, err)
		}
		code = c
	}

	format := r.URL.Query().Get("format")
	renderer, suffix := h.renderer, ""
	if format == "debug" && h.debugRenderer != nil {
		renderer, suffix = h.debugRenderer, "-debug"
	}

	result, err := renderer.Render(r.Context(), *rec, code)
	if err != nil {
		switch {
		case errors.Is(err, proof.ErrBackendUnavailable):
			log.Printf("ERROR: proof %s: %v", code, err)
			respondError(w, http.StatusServiceUnavailable, "no PDF backend available")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusGatewayTimeout, "proof generation cancelled")
		default:
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("proof generation failed: %v", err))
		}
		return
	}

	if format == "report" {
		respondJSON(w, http.StatusOK, result.Report)
		return
	}

	if result.FallbackUsed {
		w.Header().Set("X-Proof-Fallback", "true")
	}
	if n := len(result.Report.Warnings); n > 0 {
		w.Header().Set("X-Proof-Warnings", strconv.Itoa(n))
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, proofFilename(rec, code, suffix)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.Write(result.PDF)
}

// proofFilename builds an ASCII download name from the product title and code.
func proofFilename(rec *database.Configuration, code, suffix string) string {
	base := asciiSlug(rec.Title())
	if base == "" {
		base = "wallpaper-proof"
	}
	if c := asciiSlug(code); c != "" {
		base += "-" + strings.ToUpper(c)
	}
	return base + suffix + ".pdf"
}

// asciiSlug folds diacritics and joins the remaining ASCII letters and
// digits with single dashes.
func asciiSlug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

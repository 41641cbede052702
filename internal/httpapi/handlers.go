package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/identify"
	"github.com/knight-ops/inkwell/internal/scan"
)

// maxUploadBytes bounds a single /api/identify request body so a malicious
// or misbehaving client can't exhaust memory with an unbounded upload.
const maxUploadBytes = 16 << 20 // 16 MiB

// Handlers implements the HTTP surface described in §6.
type Handlers struct {
	Service *identify.Service
	Counter *scan.Counter
}

// NewHandlers wires a ready identification service and scan counter into
// the HTTP handlers.
func NewHandlers(service *identify.Service, counter *scan.Counter) *Handlers {
	return &Handlers{Service: service, Counter: counter}
}

// Health always returns 200 OK with a plain-text body.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type identifyResponse struct {
	Card             *cardJSON `json:"card"`
	Confidence       float64   `json:"confidence"`
	GlobalTotalScans uint64    `json:"global_total_scans"`
}

type cardJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Subtitle      string  `json:"subtitle"`
	SetCode       string  `json:"set_code"`
	CardNumber    uint32  `json:"card_number"`
	Rarity        string  `json:"rarity"`
	PromoGrouping *string `json:"promo_grouping"`
	ImageURL      string  `json:"image_url"`
	PHash         string  `json:"phash"`
}

// Identify reads the raw image body (any format the decoder auto-detects)
// and responds 200 with a well-formed ScanResult, even on a
// decode/extraction/match failure (§7). A body larger than maxUploadBytes
// is rejected with 413, and an unreadable body with 400.
func (h *Handlers) Identify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxUploadBytes {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	res, err := h.Service.Identify(r.Context(), body)
	if err != nil {
		klog.Errorf("httpapi: identify failed: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := identifyResponse{Confidence: res.Confidence, GlobalTotalScans: res.GlobalTotalScans}
	if res.Card != nil {
		resp.Card = &cardJSON{
			ID: res.Card.ID, Name: res.Card.Name, Subtitle: res.Card.Subtitle,
			SetCode: res.Card.SetCode, CardNumber: res.Card.CardNumber, Rarity: res.Card.Rarity,
			PromoGrouping: res.Card.PromoGrouping, ImageURL: res.Card.ImageURL, PHash: res.Card.PHash,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		klog.Errorf("httpapi: failed to encode identify response: %s", err)
	}
}

type statsResponse struct {
	TotalScannedCards uint64 `json:"total_scanned_cards"`
}

// Stats returns the lifetime scan counter.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Counter.Total(r.Context())
	if err != nil {
		klog.Errorf("httpapi: failed to read scan counter: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsResponse{TotalScannedCards: total}); err != nil {
		klog.Errorf("httpapi: failed to encode stats response: %s", err)
	}
}

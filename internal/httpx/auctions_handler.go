package httpx

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/journal"
	"github.com/ariefcatur/go-realtime-auctions/internal/lifecycle"
)

type SubmissionLister interface {
	ListByAuction(ctx context.Context, auctionID string, limit int) ([]journal.Record, error)
}

type SnapshotStream interface {
	Serve(w http.ResponseWriter, r *http.Request, auctionID string, initial []byte)
}

type AuctionsHandler struct {
	Auctions *lifecycle.Manager
	Journal  SubmissionLister // optional
	Stream   SnapshotStream   // optional
}

type PlaceBidReq struct {
	Amount string `json:"amount"`
}

type ViewResp struct {
	ID        string            `json:"id"`
	Auction   *auction.Snapshot `json:"auction,omitempty"`
	Available bool              `json:"available"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type TicketResp struct {
	TicketID  string             `json:"ticket_id"`
	Action    auction.ActionKind `json:"action"`
	AuctionID string             `json:"auction_id"`
	Caller    string             `json:"caller"`
	Amount    string             `json:"amount,omitempty"`
	AmountWei string             `json:"amount_wei,omitempty"`
	Status    string             `json:"status"`
}

func (h *AuctionsHandler) Register(r chi.Router) {
	rt := withTimeout(r)
	rt.Get("/auctions", h.listAuctions)
	rt.Get("/auctions/{id}", h.getAuction)
	rt.Post("/auctions/{id}/refresh", h.refresh)
	rt.Post("/auctions/{id}/bids", h.placeBid)
	rt.Post("/auctions/{id}/close", h.closeBid)
	rt.Get("/auctions/{id}/submissions", h.listSubmissions)
	r.Get("/ws/auctions/{id}", h.stream)
}

func toViewResp(v lifecycle.View) ViewResp {
	out := ViewResp{ID: v.ID.String(), Available: v.Available, UpdatedAt: v.Updated}
	if v.Loaded {
		snap := v.Snapshot.Snapshot()
		out.Auction = &snap
	}
	if v.Err != nil {
		out.Error = auction.Message(v.Err)
	}
	return out
}

func toTicketResp(t *lifecycle.Ticket) TicketResp {
	out := TicketResp{
		TicketID:  t.ID,
		Action:    t.Action.Kind,
		AuctionID: t.Action.AuctionID.String(),
		Caller:    t.Caller.Hex(),
		Status:    string(t.Outcome().Status),
	}
	if t.Action.Amount != nil {
		out.Amount = auction.FormatAmount(t.Action.Amount)
		out.AmountWei = t.Action.Amount.String()
	}
	return out
}

func auctionID(w http.ResponseWriter, r *http.Request) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(chi.URLParam(r, "id"), 10)
	if !ok || id.Sign() < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid auction id"})
		return nil, false
	}
	return id, true
}

func (h *AuctionsHandler) listAuctions(w http.ResponseWriter, r *http.Request) {
	views, err := h.Auctions.LoadAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ViewResp, 0, len(views))
	for _, v := range views {
		out = append(out, toViewResp(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuctionsHandler) getAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	v, _ := h.Auctions.View(id)
	if !v.Loaded {
		var err error
		if v, err = h.Auctions.Load(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toViewResp(v))
}

func (h *AuctionsHandler) refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	v, err := h.Auctions.Refresh(r.Context(), id)
	if err != nil && !v.Loaded {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewResp(v))
}

func (h *AuctionsHandler) placeBid(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	var req PlaceBidReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid json"})
		return
	}
	amount, err := auction.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.Auctions.PlaceBid(r.Context(), id, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toTicketResp(t))
}

func (h *AuctionsHandler) closeBid(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	t, err := h.Auctions.CloseBid(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toTicketResp(t))
}

func (h *AuctionsHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	if h.Journal == nil {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "submission journal not configured"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.Journal.ListByAuction(r.Context(), id.String(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "could not read submissions"})
		return
	}
	if recs == nil {
		recs = []journal.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *AuctionsHandler) stream(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	if h.Stream == nil {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "live updates not configured"})
		return
	}
	var initial []byte
	if v, _ := h.Auctions.View(id); v.Loaded {
		b, err := json.Marshal(v.Snapshot.Snapshot())
		if err == nil {
			initial = b
		}
	}
	h.Stream.Serve(w, r, id.String(), initial)
}

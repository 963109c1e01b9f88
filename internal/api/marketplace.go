package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// handleCreateAccount mints a fresh account. The response body is the only
// place the identity token is ever handed out; callers must keep it.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.engine.CreateAccount(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	acct, err := s.engine.Account(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// ─── Coupons ────────────────────────────────────────────────────────────────

func (s *Server) handlePublishCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var draft domain.CouponDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if draft.Code == "" || draft.Domain == "" {
		writeError(w, http.StatusBadRequest, "code and domain are required")
		return
	}

	coupon, err := s.engine.PublishCoupon(r.Context(), id, draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

func (s *Server) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	dom := r.URL.Query().Get("domain")
	if dom == "" {
		writeError(w, http.StatusBadRequest, "domain query parameter is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit: "+raw)
			return
		}
		limit = n
	}

	coupons, err := s.engine.ListCoupons(r.Context(), dom, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"domain":  dom,
		"coupons": coupons,
	})
}

func (s *Server) handleGetCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := chi.URLParam(r, "couponID")

	coupon, ups, downs, err := s.engine.CouponDetail(r.Context(), couponID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coupon": coupon,
		"votes": map[string]int64{
			"up":   ups,
			"down": downs,
		},
	})
}

// ─── Votes ──────────────────────────────────────────────────────────────────

type voteRequest struct {
	Up bool `json:"up"`
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	couponID := chi.URLParam(r, "couponID")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	coupon, err := s.engine.CastVote(r.Context(), id, couponID, req.Up)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coupon)
}

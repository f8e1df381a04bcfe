package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
	"github.com/shopcomplex/storefront/internal/usecase"
)

const sessionCookie = "sid"

type Server struct {
	mux          *http.ServeMux
	catalog      *usecase.CatalogUC
	recs         *usecase.RecommendUC
	carts        *usecase.CartUC
	suppliers    *usecase.SupplierUC
	otp          *usecase.OTPUC
	interactions domain.InteractionRepo

	// per-session view history, session-scoped only
	histMu    sync.Mutex
	histories map[string]domain.ViewHistory
}

func New(catalog *usecase.CatalogUC, recs *usecase.RecommendUC, carts *usecase.CartUC, suppliers *usecase.SupplierUC, otp *usecase.OTPUC, interactions domain.InteractionRepo) http.Handler {
	s := &Server{
		mux:          http.NewServeMux(),
		catalog:      catalog,
		recs:         recs,
		carts:        carts,
		suppliers:    suppliers,
		otp:          otp,
		interactions: interactions,
		histories:    map[string]domain.ViewHistory{},
	}
	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)
	s.mux.HandleFunc("/api/categories", s.apiCategories)
	s.mux.HandleFunc("/api/catalog/refresh", s.apiCatalogRefresh)

	s.mux.HandleFunc("/api/recommendations", s.apiRecommendations)
	s.mux.HandleFunc("/api/trending", s.apiTrending)
	s.mux.HandleFunc("/api/history", s.apiHistory)

	s.mux.HandleFunc("/api/cart", s.apiCart)
	s.mux.HandleFunc("/api/cart/update", s.apiCartUpdate)
	s.mux.HandleFunc("/api/cart/remove", s.apiCartRemove)
	s.mux.HandleFunc("/api/cart/clear", s.apiCartClear)

	s.mux.HandleFunc("/api/otp/request", s.apiOTPRequest)
	s.mux.HandleFunc("/api/otp/verify", s.apiOTPVerify)

	s.mux.HandleFunc("/api/suppliers/register", s.apiSupplierRegister)
	s.mux.HandleFunc("/api/suppliers/login", s.apiSupplierLogin)
	s.mux.HandleFunc("/api/suppliers/verify", s.apiSupplierVerify)
	s.mux.HandleFunc("/api/suppliers/logout", s.apiSupplierLogout)
	s.mux.HandleFunc("/api/suppliers/me", s.apiSupplierMe)
	s.mux.HandleFunc("/api/suppliers/products", s.apiSupplierProducts)
	s.mux.HandleFunc("/api/suppliers/products/", s.apiSupplierProductByID)
	s.mux.HandleFunc("/api/suppliers/products/export", s.apiSupplierExport)
	s.mux.HandleFunc("/api/suppliers/", s.apiSupplierStore)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": err.Error()})
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": err.Error()})
	}
}

func decodeBody(r *http.Request, dest any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return domain.ErrBadRequest
	}
	return nil
}

// session returns the shopper's session id, minting a cookie when absent.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if h := r.Header.Get("X-Session-ID"); h != "" {
		return h
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sid, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true})
	return sid
}

func (s *Server) history(sid string) domain.ViewHistory {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return s.histories[sid]
}

func (s *Server) record(r *http.Request, sid string, productID int, kind domain.InteractionKind) {
	if s.interactions == nil {
		return
	}
	in := &domain.Interaction{SessionID: sid, ProductID: productID, Kind: kind}
	if err := s.interactions.Record(r.Context(), in); err != nil {
		log.Warn().Err(err).Msg("interaction record failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"status":       "healthy",
		"products":     len(s.catalog.Products()),
		"refreshed_at": s.catalog.RefreshedAt(),
	})
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	f := domain.ProductFilter{
		Category: qv.Get("category"),
		Query:    qv.Get("q"),
	}
	if v, err := strconv.ParseFloat(qv.Get("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(qv.Get("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseFloat(qv.Get("min_rating"), 64); err == nil {
		f.MinRating = v
	}
	list := s.catalog.Filter(f)
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

// apiProductByID serves /api/products/{id} and /api/products/{id}/similar.
func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, domain.ErrBadRequest)
		return
	}

	if len(parts) == 2 && parts[1] == "similar" {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		writeJSON(w, 200, map[string]any{"items": s.recs.Similar(id, n)})
		return
	}

	p, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"items": s.catalog.Categories()})
}

func (s *Server) apiCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	s.catalog.Refresh(r.Context())
	writeJSON(w, 200, map[string]any{"status": "ok", "products": len(s.catalog.Products())})
}

func (s *Server) apiRecommendations(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	writeJSON(w, 200, map[string]any{"items": s.recs.ForYou(s.history(sid))})
}

func (s *Server) apiTrending(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	items, err := s.recs.Trending(r.Context(), time.Duration(days)*24*time.Hour, n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": items})
}

func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	if r.Method == http.MethodGet {
		writeJSON(w, 200, map[string]any{"items": s.history(sid)})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, ok := s.catalog.Get(req.ProductID); !ok {
		writeError(w, domain.ErrNotFound)
		return
	}
	s.histMu.Lock()
	s.histories[sid] = s.histories[sid].Push(req.ProductID)
	h := s.histories[sid]
	s.histMu.Unlock()
	s.record(r, sid, req.ProductID, domain.InteractionView)
	writeJSON(w, 200, map[string]any{"items": h})
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	switch r.Method {
	case http.MethodGet:
		lines := s.carts.Lines(sid)
		writeJSON(w, 200, map[string]any{"lines": lines, "total": domain.CartTotal(lines)})
	case http.MethodPost:
		var req struct {
			ProductID int `json:"product_id"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		p, ok := s.catalog.Get(req.ProductID)
		if !ok {
			writeError(w, domain.ErrNotFound)
			return
		}
		line, err := s.carts.Add(sid, p)
		if err != nil {
			writeError(w, err)
			return
		}
		s.record(r, sid, p.ID, domain.InteractionCart)
		writeJSON(w, 200, map[string]any{"status": "ok", "line": line, "total": s.carts.Total(sid)})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	sid := s.session(w, r)
	var req struct {
		LineID   string `json:"line_id"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.carts.UpdateQuantity(sid, req.LineID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	lines := s.carts.Lines(sid)
	writeJSON(w, 200, map[string]any{"lines": lines, "total": domain.CartTotal(lines)})
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	sid := s.session(w, r)
	var req struct {
		LineID string `json:"line_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.carts.Remove(sid, req.LineID); err != nil {
		writeError(w, err)
		return
	}
	lines := s.carts.Lines(sid)
	writeJSON(w, 200, map[string]any{"lines": lines, "total": domain.CartTotal(lines)})
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	sid := s.session(w, r)
	if err := s.carts.Clear(sid); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) apiOTPRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ch, err := s.otp.Request(r.Context(), req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok", "challenge": ch})
}

func (s *Server) apiOTPVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Key string `json:"key"`
		OTP string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.otp.Verify(r.Context(), req.Key, req.OTP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) apiSupplierRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req domain.Supplier
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sup, err := s.suppliers.Register(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, sup)
}

// apiSupplierLogin starts the OTP flow for an existing supplier.
func (s *Server) apiSupplierLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.suppliers.Lookup(req.Identifier); err != nil {
		writeError(w, err)
		return
	}
	ch, err := s.otp.Request(r.Context(), req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok", "challenge": ch})
}

// apiSupplierVerify completes the OTP flow and opens the supplier session.
func (s *Server) apiSupplierVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Identifier string `json:"identifier"`
		OTP        string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sup, err := s.suppliers.Lookup(req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.otp.Verify(r.Context(), req.Identifier, req.OTP); err != nil {
		writeError(w, err)
		return
	}
	if err := s.suppliers.CreateSession(sup); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, sup)
}

func (s *Server) apiSupplierLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := s.suppliers.Logout(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) apiSupplierMe(w http.ResponseWriter, r *http.Request) {
	sup, ok := s.suppliers.CurrentSession()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "not logged in"})
		return
	}
	writeJSON(w, 200, sup)
}

// requireSupplier resolves the logged-in supplier or writes a 401.
func (s *Server) requireSupplier(w http.ResponseWriter) (domain.Supplier, bool) {
	sup, ok := s.suppliers.CurrentSession()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "supplier login required"})
	}
	return sup, ok
}

func (s *Server) apiSupplierProducts(w http.ResponseWriter, r *http.Request) {
	sup, ok := s.requireSupplier(w)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, map[string]any{"items": s.suppliers.Listings(sup.ID)})
	case http.MethodPost:
		var req domain.Listing
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		req.SupplierID = sup.ID
		l, err := s.suppliers.AddListing(req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 201, l)
	default:
		http.Error(w, "method", 405)
	}
}

// apiSupplierProductByID serves PUT/DELETE /api/suppliers/products/{id}.
func (s *Server) apiSupplierProductByID(w http.ResponseWriter, r *http.Request) {
	sup, ok := s.requireSupplier(w)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/suppliers/products/")
	if !s.ownsListing(sup.ID, id) {
		writeError(w, domain.ErrNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var patch usecase.ListingPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, err)
			return
		}
		l, err := s.suppliers.UpdateListing(id, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, l)
	case http.MethodDelete:
		if err := s.suppliers.DeleteListing(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) ownsListing(supplierID, listingID string) bool {
	for _, l := range s.suppliers.Listings(supplierID) {
		if l.ID == listingID {
			return true
		}
	}
	return false
}

// apiSupplierStore serves the public storefront of one supplier:
// GET /api/suppliers/{id}/products.
func (s *Server) apiSupplierStore(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/suppliers/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "products" {
		http.NotFound(w, r)
		return
	}
	sup, err := s.suppliers.ByID(parts[0])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"supplier": sup, "items": s.suppliers.Listings(sup.ID)})
}

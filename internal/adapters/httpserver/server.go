package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

const maxBody = 1 << 20

type Server struct {
	mux          *http.ServeMux
	customers    *usecase.CustomerUC
	products     *usecase.ProductUC
	sales        *usecase.SaleUC
	installments *usecase.InstallmentUC
	reports      *usecase.ReportUC
}

type Deps struct {
	Customers    *usecase.CustomerUC
	Products     *usecase.ProductUC
	Sales        *usecase.SaleUC
	Installments *usecase.InstallmentUC
	Reports      *usecase.ReportUC
	CORSOrigins  []string
}

func New(d Deps) http.Handler {
	s := &Server{
		mux:          http.NewServeMux(),
		customers:    d.Customers,
		products:     d.Products,
		sales:        d.Sales,
		installments: d.Installments,
		reports:      d.Reports,
	}
	s.routes()
	return Chain(s.mux,
		CORS(d.CORSOrigins),
		RequestID,
		Logging,
		Recovery,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("GET /api/customers", s.listCustomers)
	s.mux.HandleFunc("POST /api/customers", s.createCustomer)
	s.mux.HandleFunc("GET /api/customers/{id}", s.getCustomer)
	s.mux.HandleFunc("PUT /api/customers/{id}", s.updateCustomer)
	s.mux.HandleFunc("DELETE /api/customers/{id}", s.deleteCustomer)

	s.mux.HandleFunc("GET /api/products", s.listProducts)
	s.mux.HandleFunc("POST /api/products", s.createProduct)
	s.mux.HandleFunc("GET /api/products/categories", s.productCategories)
	s.mux.HandleFunc("GET /api/products/{id}", s.getProduct)
	s.mux.HandleFunc("GET /api/products/{id}/movements", s.productMovements)
	s.mux.HandleFunc("PUT /api/products/{id}", s.updateProduct)
	s.mux.HandleFunc("DELETE /api/products/{id}", s.deleteProduct)

	s.mux.HandleFunc("GET /api/sales", s.listSales)
	s.mux.HandleFunc("POST /api/sales", s.createSale)
	s.mux.HandleFunc("GET /api/sales/{id}", s.getSale)
	s.mux.HandleFunc("PUT /api/sales/{id}", s.updateSale)
	s.mux.HandleFunc("DELETE /api/sales/{id}", s.deleteSale)

	s.mux.HandleFunc("GET /api/installments", s.listInstallments)
	s.mux.HandleFunc("POST /api/installments/mark-overdue", s.markOverdue)
	s.mux.HandleFunc("GET /api/installments/{id}", s.getInstallment)
	s.mux.HandleFunc("PUT /api/installments/{id}", s.updateInstallment)
	s.mux.HandleFunc("DELETE /api/installments/{id}", s.deleteInstallment)
	s.mux.HandleFunc("POST /api/installments/{id}/pay", s.payInstallment)

	s.mux.HandleFunc("GET /api/dashboard", s.dashboard)
	s.mux.HandleFunc("GET /api/reports/sales", s.salesReport)
	s.mux.HandleFunc("GET /api/reports/financial", s.financialReport)
	s.mux.HandleFunc("GET /api/reports/inventory", s.inventoryReport)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz erros de domínio para status HTTP; é o único ponto que registra a falha.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := errorResponse(err)
	ev := log.Debug()
	if code >= 500 {
		ev = log.Error()
	}
	ev.Err(err).
		Str("request_id", RequestIDFrom(r.Context())).
		Int("status", code).
		Msg("request failed")
	writeJSON(w, code, body)
}

func errorResponse(err error) (int, errorBody) {
	var (
		ve *domain.ValidationError
		se *domain.InsufficientStockError
		me *domain.InstallmentMismatchError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, errorBody{Error: ve.Err.Error(), Field: ve.Field}
	case errors.As(err, &se):
		return http.StatusConflict, errorBody{
			Error:     domain.ErrInsufficientStock.Error(),
			ProductID: se.ProductID,
			Available: &se.Available,
			Requested: &se.Requested,
		}
	case errors.As(err, &me):
		return http.StatusUnprocessableEntity, errorBody{Error: me.Error(), Expected: &me.Expected, Got: &me.Got}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: domain.ErrNotFound.Error()}
	case errors.Is(err, domain.ErrInUse):
		return http.StatusConflict, errorBody{Error: domain.ErrInUse.Error()}
	case errors.Is(err, domain.ErrStockConflict):
		return http.StatusConflict, errorBody{Error: domain.ErrStockConflict.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "erro interno"}
	}
}

var errBadJSON = errors.New("json inválido")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, r, ve)
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errBadJSON.Error()})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, r, domain.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, domain.NewValidationError(key, domain.ErrInvalidDate)
	}
	return &t, nil
}

func queryPeriod(r *http.Request) (from, to *time.Time, err error) {
	if from, err = queryDate(r, "start_date"); err != nil {
		return nil, nil, err
	}
	if to, err = queryDate(r, "end_date"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// userID lê o operador autenticado repassado pelo proxy de identidade.
func userID(r *http.Request) *uint {
	id, err := strconv.ParseUint(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	u := uint(id)
	return &u
}

func pageSize(n int) int {
	if n <= 0 {
		return 15
	}
	return n
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	f := domain.CustomerFilter{Query: r.URL.Query().Get("q"), Page: queryInt(r, "page"), PageSize: queryInt(r, "page_size")}
	list, total, err := s.customers.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page[domain.Customer]{Data: list, Total: total, Page: max(f.Page, 1), PageSize: pageSize(f.PageSize)})
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in usecase.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := s.customers.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := s.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in usecase.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := s.customers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.customers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	switch q.Get("status") {
	case "active":
		v := true
		f.Active = &v
	case "inactive":
		v := false
		f.Active = &v
	}
	f.LowStock, _ = strconv.ParseBool(q.Get("low_stock"))
	list, total, err := s.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page[domain.Product]{Data: list, Total: total, Page: max(f.Page, 1), PageSize: pageSize(f.PageSize)})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := s.products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) productCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.products.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) productMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := s.products.Movements(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in usecase.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := s.products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := domain.SaleFilter{
		Query:    r.URL.Query().Get("q"),
		Status:   domain.SaleStatus(r.URL.Query().Get("status")),
		From:     from,
		To:       to,
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	list, total, err := s.sales.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page[domain.Sale]{Data: list, Total: total, Page: max(f.Page, 1), PageSize: pageSize(f.PageSize)})
}

func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := s.sales.Create(r.Context(), req.input(userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/sales/%d", sale.ID))
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := s.sales.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) updateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := s.sales.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.sales.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listInstallments(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	f := domain.InstallmentFilter{
		Query:    q.Get("q"),
		Status:   domain.InstallmentStatus(q.Get("status")),
		Window:   domain.DueWindow(q.Get("window")),
		From:     from,
		To:       to,
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	list, total, stats, err := s.installments.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, installmentPage{
		page:  page[domain.Installment]{Data: list, Total: total, Page: max(f.Page, 1), PageSize: pageSize(f.PageSize)},
		Stats: stats,
	})
}

func (s *Server) markOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := s.installments.MarkOverdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) getInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inst, err := s.installments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) updateInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateInstallmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inst, err := s.installments.Update(r.Context(), id, usecase.UpdateInstallmentInput{
		Amount:       req.Amount,
		DueDate:      req.DueDate.Time,
		PaymentNotes: req.PaymentNotes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) deleteInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.installments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) payInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req payRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inst, err := s.installments.MarkPaid(r.Context(), id, usecase.PayInstallmentInput{
		PaymentDate: req.PaymentDate.Time,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) salesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.reports.SalesReport(r.Context(), from, to, usecase.GroupBy(r.URL.Query().Get("group_by")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(rep, "csv"))
		if err := writeSalesCSV(w, rep); err != nil {
			log.Error().Err(err).Msg("export csv")
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(rep, "xlsx"))
		if err := writeSalesXLSX(w, rep); err != nil {
			log.Error().Err(err).Msg("export xlsx")
		}
	default:
		writeError(w, r, domain.NewValidationError("format", errors.New("formato deve ser json, csv ou xlsx")))
	}
}

func (s *Server) financialReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.reports.FinancialReport(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) inventoryReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.InventoryReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/internal/domain"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
	"github.com/axlesai/floorplan-engine/pkg/response"
)

// DealerHeader carries the caller identity asserted by the upstream auth proxy
const DealerHeader = "X-Dealer-ID"

// AccountService is the account-ledger surface the handler needs
type AccountService interface {
	OpenAccount(ctx context.Context, dealerID uuid.UUID, request *domain.OpenAccountRequest) (*domain.Account, error)
	ListAccounts(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error)
	GetAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error)
	UpdateTerms(ctx context.Context, dealerID, accountID uuid.UUID, request *domain.UpdateAccountRequest) (*domain.Account, error)
	CloseAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error)
	CheckCredit(ctx context.Context, dealerID, accountID uuid.UUID, amount decimal.Decimal) (*domain.CreditCheck, error)
	ListProviders(ctx context.Context) ([]*domain.Provider, error)
}

// FloorService is the unit-floor-engine surface the handler needs
type FloorService interface {
	FloorUnit(ctx context.Context, dealerID uuid.UUID, request *domain.FloorUnitRequest) (*domain.UnitLoan, error)
	ListUnitLoans(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error)
	GetUnitLoan(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error)
	ListLedger(ctx context.Context, dealerID, loanID uuid.UUID) ([]*domain.LedgerEntry, error)
	RecordPayment(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.UnitLoan, *domain.LedgerEntry, error)
	Payoff(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.PayoffRequest) (*domain.UnitLoan, error)
	PayoffQuote(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.PayoffQuote, error)
}

// AlertService is the alert surface the handler needs
type AlertService interface {
	GetAlerts(ctx context.Context, dealerID uuid.UUID) (domain.AlertDigest, error)
	DismissAlert(ctx context.Context, dealerID uuid.UUID, alertID string) error
}

// MetricsService is the dashboard roll-up surface the handler needs
type MetricsService interface {
	Dashboard(ctx context.Context, dealerID uuid.UUID) (domain.DashboardMetrics, error)
	UpcomingCurtailments(ctx context.Context, dealerID uuid.UUID, windowDays int) ([]*domain.UnitLoan, error)
}

type FloorPlanHandler struct {
	accounts  AccountService
	floor     FloorService
	alerts    AlertService
	metrics   MetricsService
	validator *validator.Validate
}

func NewFloorPlanHandler(accounts AccountService, floor FloorService, alerts AlertService, metrics MetricsService) *FloorPlanHandler {
	return &FloorPlanHandler{
		accounts:  accounts,
		floor:     floor,
		alerts:    alerts,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// Register mounts all floor plan routes on the router
func (h *FloorPlanHandler) Register(router *mux.Router) {
	fp := router.PathPrefix("/floor-plan").Subrouter()

	fp.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	fp.HandleFunc("/accounts", h.OpenAccount).Methods("POST")
	fp.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
	fp.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PATCH")
	fp.HandleFunc("/accounts/{id}", h.CloseAccount).Methods("DELETE")
	fp.HandleFunc("/accounts/{id}/credit-check", h.CheckCredit).Methods("GET")

	fp.HandleFunc("/units", h.ListUnits).Methods("GET")
	fp.HandleFunc("/units", h.FloorUnit).Methods("POST")
	fp.HandleFunc("/units/{id}", h.GetUnit).Methods("GET")
	fp.HandleFunc("/units/{id}/ledger", h.ListLedger).Methods("GET")
	fp.HandleFunc("/units/{id}/payments", h.RecordPayment).Methods("POST")
	fp.HandleFunc("/units/{id}/payoff", h.Payoff).Methods("POST")
	fp.HandleFunc("/units/{id}/payoff/quote", h.PayoffQuote).Methods("GET")

	fp.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	fp.HandleFunc("/alerts/{id}/dismiss", h.DismissAlert).Methods("POST")
	fp.HandleFunc("/providers", h.ListProviders).Methods("GET")
}

func (h *FloorPlanHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), dealerID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, accounts)
}

func (h *FloorPlanHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	var request domain.OpenAccountRequest
	if !h.decode(w, r, &request) {
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), dealerID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, account)
}

func (h *FloorPlanHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), dealerID, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, account)
}

func (h *FloorPlanHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	var request domain.UpdateAccountRequest
	if !h.decode(w, r, &request) {
		return
	}

	account, err := h.accounts.UpdateTerms(r.Context(), dealerID, accountID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, account)
}

func (h *FloorPlanHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.CloseAccount(r.Context(), dealerID, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, account)
}

func (h *FloorPlanHandler) CheckCredit(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, "amount must be a decimal")
		return
	}

	check, err := h.accounts.CheckCredit(r.Context(), dealerID, accountID, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, check)
}

func (h *FloorPlanHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	filter := domain.LoanFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, customError.ErrCodeValidation, "account_id must be a UUID")
			return
		}
		filter.AccountID = &accountID
	}

	loans, err := h.floor.ListUnitLoans(r.Context(), dealerID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loans)
}

func (h *FloorPlanHandler) FloorUnit(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	var request domain.FloorUnitRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.floor.FloorUnit(r.Context(), dealerID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, loan)
}

func (h *FloorPlanHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	loanID, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.floor.GetUnitLoan(r.Context(), dealerID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *FloorPlanHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	loanID, ok := pathID(w, r)
	if !ok {
		return
	}

	entries, err := h.floor.ListLedger(r.Context(), dealerID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, entries)
}

func (h *FloorPlanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	loanID, ok := pathID(w, r)
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, entry, err := h.floor.RecordPayment(r.Context(), dealerID, loanID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, map[string]interface{}{
		"unit_loan": loan,
		"entry":     entry,
	})
}

func (h *FloorPlanHandler) Payoff(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	loanID, ok := pathID(w, r)
	if !ok {
		return
	}

	var request domain.PayoffRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.floor.Payoff(r.Context(), dealerID, loanID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *FloorPlanHandler) PayoffQuote(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}
	loanID, ok := pathID(w, r)
	if !ok {
		return
	}

	quote, err := h.floor.PayoffQuote(r.Context(), dealerID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, quote)
}

func (h *FloorPlanHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	metrics, err := h.metrics.Dashboard(r.Context(), dealerID)
	if err != nil {
		writeError(w, err)
		return
	}
	alerts, err := h.alerts.GetAlerts(r.Context(), dealerID)
	if err != nil {
		writeError(w, err)
		return
	}
	upcoming, err := h.metrics.UpcomingCurtailments(r.Context(), dealerID, 7)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"metrics":               metrics,
		"alerts":                alerts,
		"upcoming_curtailments": upcoming,
	})
}

func (h *FloorPlanHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	dealerID, ok := dealerFrom(w, r)
	if !ok {
		return
	}

	alertID := mux.Vars(r)["id"]
	if alertID == "" {
		response.BadRequest(w, customError.ErrCodeValidation, "alert id is required")
		return
	}

	if err := h.alerts.DismissAlert(r.Context(), dealerID, alertID); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, map[string]string{"dismissed": alertID})
}

func (h *FloorPlanHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.accounts.ListProviders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, providers)
}

// decode unmarshals and schema-validates a request body, replying with a
// field-level error list on failure.
func (h *FloorPlanHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, "invalid JSON body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]response.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, response.FieldError{
					Field:   strings.ToLower(fe.Field()),
					Message: validationMessage(fe),
				})
			}
			response.ValidationFailed(w, fields)
			return false
		}
		response.BadRequest(w, customError.ErrCodeValidation, "request validation failed")
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be formatted as " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func dealerFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(DealerHeader)
	if raw == "" {
		response.Unauthorized(w, "missing dealer identity")
		return uuid.Nil, false
	}
	dealerID, err := uuid.Parse(raw)
	if err != nil {
		response.Unauthorized(w, "invalid dealer identity")
		return uuid.Nil, false
	}
	return dealerID, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		// Malformed ids read the same as absent resources.
		response.NotFound(w, "resource not found")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the business error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	var berr *customError.BusinessError
	if !errors.As(err, &berr) {
		response.InternalServerError(w, "unexpected error")
		return
	}

	switch berr.Code {
	case customError.ErrCodeValidation:
		response.BadRequest(w, berr.Code, berr.Message)
	case customError.ErrCodeNotFound:
		response.NotFound(w, berr.Message)
	case customError.ErrCodeAlreadyFloored, customError.ErrCodeActiveLoansExist, customError.ErrCodeCreditConflict:
		response.Conflict(w, berr.Code, berr.Message, berr.Details)
	case customError.ErrCodeAccountNotActive, customError.ErrCodeLoanNotActive, customError.ErrCodeInsufficientCredit:
		response.UnprocessableEntity(w, berr.Code, berr.Message, berr.Details)
	case customError.ErrCodeRateLimited:
		response.TooManyRequests(w, berr.Message)
	default:
		response.InternalServerError(w, "request failed, retry the whole operation")
	}
}

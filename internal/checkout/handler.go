package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"p24-gateway/internal/config"
	"p24-gateway/internal/logger"
	"p24-gateway/internal/metrics"
	"p24-gateway/internal/middleware"
	"p24-gateway/internal/p24"
	"p24-gateway/internal/payment"
	"p24-gateway/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxRequestBytes = 16 << 10

// Request is the JSON body of POST /p24/checkout. Amount is in major units.
type Request struct {
	OrderID     string `json:"order_id" validate:"omitempty,max=100"`
	Amount      string `json:"amount" validate:"required,numeric"`
	Currency    string `json:"currency" validate:"required,len=3,alpha"`
	Description string `json:"description" validate:"max=1024"`
	Email       string `json:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name" validate:"max=50"`
	LastName    string `json:"last_name" validate:"max=50"`
	ReturnURL   string `json:"return_url" validate:"omitempty,url"`
}

type Handler struct {
	Repo      payment.Repository
	Stats     *metrics.PaymentStats
	cfg       config.P24Config
	endpoints p24.Endpoints
	validate  *validator.Validate
}

func NewHandler(repo payment.Repository, cfg *config.Config, stats *metrics.PaymentStats) *Handler {
	if stats == nil {
		stats = &metrics.PaymentStats{}
	}
	return &Handler{
		Repo:      repo,
		Stats:     stats,
		cfg:       cfg.P24,
		endpoints: cfg.Endpoints(),
		validate:  validator.New(),
	}
}

// CreateHandler signs a payment-initiation form and records the outbound
// transaction as PENDING. The response is what the storefront posts to P24.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessionID := req.OrderID
	if sessionID == "" {
		sessionID = utils.GenerateSessionID()
	}
	log = log.With(zap.String("session_id", sessionID))

	form, err := h.buildForm(sessionID, req)
	if err != nil {
		var cfgErr *p24.ConfigurationError
		switch {
		case errors.Is(err, p24.ErrInvalidInput):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &cfgErr):
			log.Error("P24 integration misconfigured", zap.Error(err))
			utils.WriteJSONError(w, "payment gateway misconfigured", http.StatusInternalServerError)
		default:
			log.Error("Failed to build P24 form", zap.Error(err))
			utils.WriteJSONError(w, "failed to build payment form", http.StatusInternalServerError)
		}
		return
	}

	amount, err := strconv.ParseInt(form.Fields[p24.FieldAmount], 10, 64)
	if err != nil {
		log.Error("Signed form carries a non-integer amount", zap.Error(err))
		utils.WriteJSONError(w, "failed to build payment form", http.StatusInternalServerError)
		return
	}

	tx := &payment.Transaction{
		SessionID:   sessionID,
		MerchantID:  h.cfg.MerchantID,
		Amount:      amount,
		Currency:    form.Fields[p24.FieldCurrency],
		Description: req.Description,
		Email:       req.Email,
		Sign:        form.Fields[p24.FieldSign],
		Status:      payment.StatusPending,
	}
	if err := h.Repo.SaveTransaction(ctx, tx); err != nil {
		if errors.Is(err, payment.ErrDuplicateSession) {
			utils.WriteJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		log.Error("Failed to store transaction", zap.Error(err))
		utils.WriteJSONError(w, "failed to store transaction", http.StatusInternalServerError)
		return
	}

	h.Stats.Checkouts.Inc()
	log.Info("P24 checkout created",
		zap.String("service", middleware.ServiceFrom(ctx)),
		zap.Int64("amount", amount),
		zap.String("currency", tx.Currency),
	)

	utils.WriteJSON(w, http.StatusCreated, form)
}

func (h *Handler) buildForm(sessionID string, req Request) (*p24.Form, error) {
	returnURL := h.cfg.ReturnURL
	if req.ReturnURL != "" {
		returnURL = req.ReturnURL
	}

	helper := p24.NewHelper(sessionID, h.cfg.MerchantID, p24.HelperOptions{
		CRCKey:      h.cfg.CRCKey,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		NotifyURL:   h.cfg.NotifyURL,
		ReturnURL:   returnURL,
		Endpoints:   h.endpoints,
	})
	if req.Email != "" || req.FirstName != "" || req.LastName != "" {
		helper.Customer(req.FirstName, req.LastName, req.Email)
	}

	return helper.Form()
}

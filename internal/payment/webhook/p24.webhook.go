package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"p24-gateway/internal/logger"
	"p24-gateway/internal/metrics"
	"p24-gateway/internal/p24"
	"p24-gateway/internal/payment"

	"go.uber.org/zap"
)

const (
	maxNotificationBytes = 64 << 10
	defaultAckTimeout    = 30 * time.Second
)

// Verifier confirms a notification with the gateway.
type Verifier interface {
	Acknowledge(ctx context.Context, n *p24.Notification) (*p24.Result, error)
}

type Handler struct {
	Repo       payment.Repository
	Verifier   Verifier
	Stats      *metrics.PaymentStats
	AckTimeout time.Duration
}

func NewWebhookHandler(repo payment.Repository, verifier Verifier, stats *metrics.PaymentStats, ackTimeout time.Duration) *Handler {
	if stats == nil {
		stats = &metrics.PaymentStats{}
	}
	if ackTimeout <= 0 {
		ackTimeout = defaultAckTimeout
	}
	return &Handler{
		Repo:       repo,
		Verifier:   verifier,
		Stats:      stats,
		AckTimeout: ackTimeout,
	}
}

// NotifyHandler receives P24 status posts (p24_url_status).
//
// 200 tells the gateway to stop resending: confirmed, rejected, incomplete and
// duplicate posts all end here. A transport failure answers 503 so the
// gateway posts again later.
func (h *Handler) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	values, err := url.ParseQuery(string(body))
	if err != nil {
		log.Warn("Malformed notification body", zap.Error(err))
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	if !p24.Recognizes(values) {
		h.Stats.Unrecognized.Inc()
		log.Warn("Notification not recognized as P24")
		http.Error(w, "unrecognized notification", http.StatusBadRequest)
		return
	}

	n, err := p24.NewNotification(values)
	if err != nil {
		http.Error(w, "invalid notification", http.StatusBadRequest)
		return
	}
	h.Stats.Notifications.Inc()

	log = log.With(
		zap.String("session_id", n.ItemID()),
		zap.String("order_id", n.TransactionID()),
	)

	notificationID, isDuplicate, err := h.Repo.SaveNotification(ctx, n)
	if err != nil {
		log.Error("Failed to store notification", zap.Error(err))
		http.Error(w, "failed to store notification", http.StatusInternalServerError)
		return
	}
	if isDuplicate {
		h.Stats.Duplicates.Inc()
		log.Info("Notification already processed")
		writeOK(w)
		return
	}

	if !n.Complete() {
		h.Stats.Incomplete.Inc()
		reason := fmt.Sprintf("gateway reported error %s", n.ErrorCode())
		log.Warn("Notification reports an incomplete transaction", zap.String("error", n.ErrorCode()))
		h.markFailed(ctx, log, notificationID, n.ItemID(), payment.StatusIncomplete, reason)
		writeOK(w)
		return
	}

	ackCtx, cancel := context.WithTimeout(ctx, h.AckTimeout)
	defer cancel()

	timer := metrics.StartTimer()
	res, err := h.Verifier.Acknowledge(ackCtx, n)
	if err != nil {
		log.Error("Notification could not be acknowledged", zap.Error(err))
		h.markFailed(ctx, log, notificationID, n.ItemID(), payment.StatusFailed, err.Error())
		if errors.Is(err, p24.ErrInvalidInput) {
			http.Error(w, "invalid notification", http.StatusBadRequest)
			return
		}
		http.Error(w, "acknowledgment misconfigured", http.StatusInternalServerError)
		return
	}
	h.Stats.ObserveAck(timer.Duration())

	switch res.State {
	case p24.StateConfirmed:
		h.Stats.Confirmed.Inc()
		if err := h.Repo.MarkNotificationConfirmed(ctx, notificationID); err != nil {
			log.Error("Failed to mark notification confirmed", zap.Error(err))
		}
		if err := h.Repo.UpdateTransactionStatus(ctx, n.ItemID(), payment.StatusConfirmed); err != nil {
			log.Error("Failed to update transaction status", zap.Error(err))
			http.Error(w, "failed to update transaction", http.StatusInternalServerError)
			return
		}
		writeOK(w)

	case p24.StateRejected:
		h.Stats.Rejected.Inc()
		rej, _ := res.Rejection()
		if err := h.Repo.MarkNotificationRejected(ctx, notificationID, rej.Code, rej.Description); err != nil {
			log.Error("Failed to mark notification rejected", zap.Error(err))
		}
		if err := h.Repo.UpdateTransactionStatus(ctx, n.ItemID(), payment.StatusRejected); err != nil {
			log.Error("Failed to update transaction status", zap.Error(err))
		}
		writeOK(w)

	default:
		h.Stats.Failed.Inc()
		h.markFailed(ctx, log, notificationID, "", payment.StatusFailed, res.Err().Error())
		http.Error(w, "verification unavailable", http.StatusServiceUnavailable)
	}
}

// markFailed records the failure; sessionID is only set when the
// transaction itself should leave PENDING.
func (h *Handler) markFailed(ctx context.Context, log *zap.Logger, notificationID int64, sessionID, status, reason string) {
	if err := h.Repo.MarkNotificationFailed(ctx, notificationID, status, reason); err != nil {
		log.Error("Failed to mark notification failed", zap.Error(err))
	}
	if sessionID == "" {
		return
	}
	if err := h.Repo.UpdateTransactionStatus(ctx, sessionID, status); err != nil {
		log.Error("Failed to update transaction status", zap.Error(err))
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const paymentVerifiedMessage = "Payment verified successfully"

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo   repository.OrderRepository
	verifier    payment.Verifier
	gatewayName string
	sink        notify.Sink
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment service. gatewayName is recorded as
// the payment method of every order it confirms.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	verifier payment.Verifier,
	gatewayName string,
	sink notify.Sink,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		verifier:    verifier,
		gatewayName: gatewayName,
		sink:        sink,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// Verify checks the gateway signature and confirms the order's payment.
//
// The order id is the binding correlation key. A replay of the payment that
// already completed the order succeeds without writing; completing an order
// that was settled by a different payment fails with
// ErrPaymentAlreadyCompleted.
func (s *paymentService) Verify(ctx context.Context, userID int64, req *model.VerifyPaymentRequest) (result *model.VerifyPaymentResult, err error) {
	if req == nil {
		return nil, model.ErrInvalidSignature
	}

	if !s.verifier.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		s.logger.Warn().
			Int64("user_id", userID).
			Str("gateway_order_id", req.GatewayOrderID).
			Str("gateway_payment_id", req.GatewayPaymentID).
			Msg("payment signature mismatch")
		return nil, model.ErrInvalidSignature
	}

	if req.OrderID == nil {
		return &model.VerifyPaymentResult{
			Success: true,
			Message: paymentVerifiedMessage,
		}, nil
	}

	orderID := *req.OrderID

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	state, err := s.orderRepo.LockPaymentState(ctx, tx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if state == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	replay := false
	if state.PaymentStatus == model.PaymentStatusCompleted {
		if state.GatewayPaymentID == nil || *state.GatewayPaymentID != req.GatewayPaymentID {
			s.logger.Warn().
				Str("order_id", orderID.String()).
				Str("gateway_payment_id", req.GatewayPaymentID).
				Msg("order already completed by another payment")
			err = model.ErrPaymentAlreadyCompleted
			return nil, err
		}
		replay = true
	}

	if !replay && state.Status == model.OrderStatusCancelled {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("gateway_payment_id", req.GatewayPaymentID).
			Msg("payment verified for cancelled order")
		err = model.ErrOrderCancelled
		return nil, err
	}

	if !replay {
		err = s.orderRepo.ConfirmPayment(ctx, tx, model.PaymentConfirmation{
			OrderID:       orderID,
			PaymentMethod: s.gatewayName,
			Gateway:       req.GatewayPayment,
			ConfirmedAt:   time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}

	details, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if details == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	if replay {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("gateway_payment_id", req.GatewayPaymentID).
			Msg("payment verification replayed")
	} else {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("gateway_payment_id", req.GatewayPaymentID).
			Str("status", string(details.Status)).
			Msg("payment verified")

		evt, evtErr := notify.NewEvent(notify.EventPaymentVerified, orderID, notify.PaymentVerifiedPayload{
			OrderID:          orderID,
			UserID:           details.UserID,
			Total:            details.Total,
			Status:           string(details.Status),
			PaymentMethod:    details.PaymentMethod,
			GatewayPaymentID: req.GatewayPaymentID,
		})
		if evtErr != nil {
			s.logger.Error().Err(evtErr).Str("order_id", orderID.String()).Msg("failed to build event")
		} else {
			s.sink.Publish(ctx, evt)
		}
	}

	return &model.VerifyPaymentResult{
		Success: true,
		Message: paymentVerifiedMessage,
		OrderID: &orderID,
		Order:   details,
	}, nil
}

// History returns the user's payments.
func (s *paymentService) History(ctx context.Context, userID int64) ([]model.TransactionSummary, error) {
	txns, err := s.orderRepo.TransactionHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txns, nil
}

// AllTransactions returns every payment, paginated.
func (s *paymentService) AllTransactions(ctx context.Context, limit, offset int) ([]model.TransactionSummary, error) {
	limit, offset = clampPage(limit, offset)

	txns, err := s.orderRepo.AllTransactions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txns, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	applog "github.com/CharlesX20/chimestradingstore/logger"
	"github.com/CharlesX20/chimestradingstore/models"
	awspkg "github.com/CharlesX20/chimestradingstore/pkg/aws"
	"github.com/CharlesX20/chimestradingstore/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultLegacyConflictIndex = "stripeSessionId_1"
	ReceiptFolder              = "orders/receipts"
	DefaultPickupGrace         = 5 * time.Minute
	persistTimeout             = 15 * time.Second
)

type submissionState string

const (
	stateValidating      submissionState = "validating"
	stateUploading       submissionState = "uploading"
	statePersisting      submissionState = "persisting"
	stateRetryingPersist submissionState = "retrying_persist"
	stateDone            submissionState = "done"
	stateFailed          submissionState = "failed"
)

type OrderServiceConfig struct {
	// LegacyConflictIndex names the unique index whose violation triggers the
	// single fallback-key retry.
	LegacyConflictIndex string
	// PickupGrace is how far in the past a pickup time may be; negative
	// disables the check.
	PickupGrace  time.Duration
	Location     *time.Location
	ManagerPhone string
}

// SubmitResult is returned for an accepted checkout.
type SubmitResult struct {
	OrderID     string
	ReceiptURL  string
	WhatsAppURL string
}

type OrderService struct {
	repo     repository.OrderRepository
	images   ImageStore
	events   EventPublisher
	metrics  MetricsRecorder
	validate *validator.Validate
	cfg      OrderServiceConfig
	logger   *zap.Logger

	now         func() time.Time
	conflictKey func(time.Time) string
}

// NewOrderService wires the submission pipeline. events and metrics may be nil.
func NewOrderService(repo repository.OrderRepository, images ImageStore, events EventPublisher, metrics MetricsRecorder, cfg OrderServiceConfig, logger *zap.Logger) *OrderService {
	if cfg.LegacyConflictIndex == "" {
		cfg.LegacyConflictIndex = DefaultLegacyConflictIndex
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:        repo,
		images:      images,
		events:      events,
		metrics:     metrics,
		validate:    newValidator(),
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		conflictKey: NewLegacyConflictKey,
	}
}

// NewLegacyConflictKey returns "fallback_<unix millis>_<random>".
func NewLegacyConflictKey(now time.Time) string {
	return fmt.Sprintf("fallback_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// SubmitOrder validates req, uploads the receipt, and persists a pending
// order. It returns *ValidationError, *UploadError or *PersistenceError on
// failure. A rejection by the legacy unique index is retried exactly once
// with a fresh fallback key; the receipt is never uploaded twice.
func (s *OrderService) SubmitOrder(ctx context.Context, req *models.CheckoutRequest) (*SubmitResult, error) {
	start := s.now()
	state := stateValidating
	log := s.logger.With(zap.String("request_id", applog.RequestIDFrom(ctx)))
	enter := func(next submissionState) {
		log.Debug("order submission state", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}

	pickup, verr := s.Validate(req)
	if verr != nil {
		enter(stateFailed)
		return nil, verr
	}

	enter(stateUploading)
	receiptURL, err := s.images.Upload(ctx, req.Receipt, ReceiptFolder)
	if err == nil && receiptURL == "" {
		err = errors.New("image store returned an empty url")
	}
	if err != nil {
		enter(stateFailed)
		log.Error("receipt upload failed", zap.Error(err))
		s.recordCount(awspkg.MetricReceiptUploadFailed)
		return nil, &UploadError{Err: err}
	}

	// The receipt is hosted; finish persisting even if the caller goes away.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	enter(statePersisting)
	order := s.buildOrder(req, pickup, receiptURL)
	id, err := s.repo.Create(persistCtx, order)
	if err != nil {
		if !repository.IsConflictOn(err, s.cfg.LegacyConflictIndex) {
			enter(stateFailed)
			log.Error("order insert failed", zap.Error(err))
			s.recordCount(awspkg.MetricOrdersFailed)
			return nil, &PersistenceError{Err: err}
		}

		enter(stateRetryingPersist)
		s.recordCount(awspkg.MetricOrderConflictRetries)
		retry := *order
		retry.LegacyConflictKey = s.conflictKey(s.now())
		log.Warn("legacy unique index conflict, retrying with fallback key",
			zap.String("constraint", s.cfg.LegacyConflictIndex),
			zap.String("fallback_key", retry.LegacyConflictKey),
		)

		var retryErr error
		id, retryErr = s.repo.Create(persistCtx, &retry)
		if retryErr != nil {
			enter(stateFailed)
			log.Error("order insert retry failed", zap.NamedError("original", err), zap.NamedError("retry", retryErr))
			s.recordCount(awspkg.MetricOrdersFailed)
			return nil, &PersistenceError{Err: err, RetryErr: retryErr}
		}
		order = &retry
	}
	order.ID = id
	enter(stateDone)

	log.Info("order created", zap.String("order_id", id.Hex()), zap.Float64("total", order.Total))
	s.recordCount(awspkg.MetricOrdersCreated)
	s.recordLatency(awspkg.MetricOrderSubmitLatency, s.now().Sub(start))
	s.publishOrderCreatedEvent(persistCtx, order)

	result := &SubmitResult{OrderID: id.Hex(), ReceiptURL: receiptURL}
	if s.cfg.ManagerPhone != "" {
		result.WhatsAppURL = WhatsAppLink(s.cfg.ManagerPhone, OrderSellerMessage(order, s.cfg.Location))
	}
	return result, nil
}

// Validate checks req without side effects and returns the parsed pickup time.
func (s *OrderService) Validate(req *models.CheckoutRequest) (time.Time, *ValidationError) {
	if req == nil {
		return time.Time{}, &ValidationError{Message: "missing order payload"}
	}
	if err := s.validate.Struct(req); err != nil {
		return time.Time{}, firstViolation(err)
	}

	pickup, err := models.ParsePickup(req.PickupDatetime, s.cfg.Location)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "pickupDatetime", Message: "is not a valid date and time"}
	}
	if s.cfg.PickupGrace >= 0 && pickup.Before(s.now().Add(-s.cfg.PickupGrace)) {
		return time.Time{}, &ValidationError{Field: "pickupDatetime", Message: "must not be in the past"}
	}
	return pickup, nil
}

func (s *OrderService) buildOrder(req *models.CheckoutRequest, pickup time.Time, receiptURL string) *models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:   it.Ref(),
			Name:        strings.TrimSpace(it.Name),
			Description: it.Description,
			Price:       float64(it.Price),
			Quantity:    it.Quantity,
		})
	}

	now := s.now().UTC()
	order := &models.Order{
		BuyerName:      strings.TrimSpace(req.BuyerName),
		BuyerPhone:     strings.TrimSpace(req.BuyerPhone),
		PickupDatetime: pickup.UTC(),
		Items:          items,
		Total:          float64(req.Total),
		ReceiptURL:     receiptURL,
		Status:         models.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The client total is stored as sent; disagreement is only reported.
	if sum := order.ItemsTotal(); math.Abs(sum-order.Total) > 0.005 {
		s.logger.Warn("checkout total does not match items",
			zap.Float64("client_total", order.Total),
			zap.Float64("items_total", sum),
		)
	}
	return order
}

// GetOrder returns a single order by its hex id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, badRequest("Invalid order ID")
	}
	order, err := s.repo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		s.logger.Error("failed to load order", zap.String("order_id", id), zap.Error(err))
		return nil, internalError("Failed to load order")
	}
	return order, nil
}

// ListOrders returns a page of orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, page, limit int) ([]models.Order, int64, *ServiceError) {
	orders, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return nil, 0, internalError("Failed to list orders")
	}
	return orders, total, nil
}

func (s *OrderService) publishOrderCreatedEvent(ctx context.Context, order *models.Order) {
	if s.events == nil {
		s.logger.Debug("event publisher not configured, skipping order_created event")
		return
	}

	payload, err := json.Marshal(models.NewOrderCreatedEvent(order))
	if err != nil {
		s.logger.Error("failed to marshal order_created event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.events.PublishEvent(pubCtx, order.ID.Hex(), payload); err != nil {
		s.logger.Error("failed to publish order_created event", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
}

func (s *OrderService) recordCount(metric string) {
	if s.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "orders"})
	}()
}

func (s *OrderService) recordLatency(metric string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.metrics.RecordLatency(ctx, metric, d, map[string]string{"Service": "orders"})
	}()
}

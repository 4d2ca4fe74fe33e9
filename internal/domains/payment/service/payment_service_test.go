package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate-backend/internal/config"
	"paygate-backend/internal/domains/payment/model"
	webhookmodel "paygate-backend/internal/domains/webhook/model"
)

// =====================================================
// FAKES
// =====================================================

type fakePaymentRepo struct {
	payments  map[uuid.UUID]*model.Payment
	byKey     map[string]*model.Payment
	createErr error
	casTo     []string
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[uuid.UUID]*model.Payment),
		byKey:    make(map[string]*model.Payment),
	}
}

func (r *fakePaymentRepo) add(p *model.Payment) {
	r.payments[p.ID] = p
	if p.IdempotencyKey != "" {
		r.byKey[p.IdempotencyKey] = p
	}
}

func (r *fakePaymentRepo) CreateWithTx(_ context.Context, _ pgx.Tx, payment *model.Payment) error {
	if r.createErr != nil {
		return r.createErr
	}
	payment.CreatedAt = time.Now().UTC()
	payment.UpdatedAt = payment.CreatedAt
	r.add(payment)
	return nil
}

func (r *fakePaymentRepo) UpdateStatusCASWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, target string) error {
	p, ok := r.payments[id]
	if !ok {
		return model.ErrPaymentNotFound
	}
	if !model.CanTransitionPayment(p.Status, target) {
		return model.NewInvalidTransitionError(p.Status, target)
	}
	p.Status = target
	r.casTo = append(r.casTo, target)
	return nil
}

func (r *fakePaymentRepo) GetForUpdateWithTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, model.NewPaymentNotFoundError(id.String())
	}
	return p, nil
}

func (r *fakePaymentRepo) GetByIdempotencyKey(_ context.Context, key string) (*model.Payment, error) {
	p, ok := r.byKey[key]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) List(_ context.Context, _ *string, _, _ int) ([]*model.Payment, int, error) {
	out := make([]*model.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, len(out), nil
}

type fakeRefundRepo struct {
	refunds []model.Refund
	sum     decimal.Decimal
}

func (r *fakeRefundRepo) CreateWithTx(_ context.Context, _ pgx.Tx, refund *model.Refund) error {
	refund.CreatedAt = time.Now().UTC()
	refund.UpdatedAt = refund.CreatedAt
	r.refunds = append(r.refunds, *refund)
	return nil
}

func (r *fakeRefundRepo) SumNonFailedWithTx(_ context.Context, _ pgx.Tx, _ uuid.UUID) (decimal.Decimal, error) {
	return r.sum, nil
}

func (r *fakeRefundRepo) ListByPaymentID(_ context.Context, _ uuid.UUID) ([]model.Refund, error) {
	return r.refunds, nil
}

type fakeIdemRepo struct {
	records   map[string]*model.IdempotencyRecord
	createErr error
	expired   int

	// lookupMisses makes the next N lookups miss, simulating a record
	// committed by a racing request after the replay check ran.
	lookupMisses int
}

func newFakeIdemRepo() *fakeIdemRepo {
	return &fakeIdemRepo{records: make(map[string]*model.IdempotencyRecord)}
}

func (r *fakeIdemRepo) CreateWithTx(_ context.Context, _ pgx.Tx, record *model.IdempotencyRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.records[record.Key]; exists {
		return model.ErrDuplicateKey
	}
	record.CreatedAt = time.Now().UTC()
	r.records[record.Key] = record
	return nil
}

func (r *fakeIdemRepo) Lookup(_ context.Context, key string) (*model.IdempotencyRecord, error) {
	if r.lookupMisses > 0 {
		r.lookupMisses--
		return nil, model.ErrIdempotencyNotFound
	}
	record, ok := r.records[key]
	if !ok {
		return nil, model.ErrIdempotencyNotFound
	}
	return record, nil
}

func (r *fakeIdemRepo) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return r.expired, nil
}

type fakeTxManager struct {
	begun, committed, rolledBack int
}

func (m *fakeTxManager) BeginTx(_ context.Context) (pgx.Tx, error) {
	m.begun++
	return nil, nil
}

func (m *fakeTxManager) CommitTx(_ context.Context, _ pgx.Tx) error {
	m.committed++
	return nil
}

func (m *fakeTxManager) RollbackTx(_ context.Context, _ pgx.Tx) error {
	m.rolledBack++
	return nil
}

type emittedEvent struct {
	eventType string
	data      map[string]interface{}
}

type fakeOutbox struct {
	emitted []emittedEvent
}

func (o *fakeOutbox) EmitWithTx(_ context.Context, _ pgx.Tx, eventType string, data map[string]interface{}) ([]uuid.UUID, error) {
	o.emitted = append(o.emitted, emittedEvent{eventType: eventType, data: data})
	return []uuid.UUID{uuid.New()}, nil
}

type fakeEnqueuer struct {
	payments   []uuid.UUID
	deliveries []uuid.UUID
}

func (e *fakeEnqueuer) EnqueueProcessPayment(_ context.Context, paymentID uuid.UUID) error {
	e.payments = append(e.payments, paymentID)
	return nil
}

func (e *fakeEnqueuer) EnqueueDeliverWebhook(_ context.Context, eventID uuid.UUID, _ time.Duration) error {
	e.deliveries = append(e.deliveries, eventID)
	return nil
}

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	value, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if b, ok := dest.(*[]byte); ok {
		*b = value
	}
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if b, ok := value.([]byte); ok {
		c.store[key] = b
	}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.store, key)
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

// =====================================================
// TEST HARNESS
// =====================================================

type serviceFixture struct {
	svc         PaymentServiceInterface
	paymentRepo *fakePaymentRepo
	refundRepo  *fakeRefundRepo
	idemRepo    *fakeIdemRepo
	txManager   *fakeTxManager
	outbox      *fakeOutbox
	enqueuer    *fakeEnqueuer
	cache       *fakeCache
	cfg         *config.Config
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		paymentRepo: newFakePaymentRepo(),
		refundRepo:  &fakeRefundRepo{sum: decimal.Zero},
		idemRepo:    newFakeIdemRepo(),
		txManager:   &fakeTxManager{},
		outbox:      &fakeOutbox{},
		enqueuer:    &fakeEnqueuer{},
		cache:       newFakeCache(),
		cfg: &config.Config{
			Payment: config.PaymentConfig{
				TestMode:           true,
				TestPaymentSuccess: true,
			},
			Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		},
	}
	f.svc = NewPaymentService(
		f.paymentRepo, f.refundRepo, f.idemRepo, f.txManager,
		f.outbox, f.enqueuer, f.cache, f.cfg,
	)
	return f
}

func validRequest() *model.CreatePaymentRequest {
	return &model.CreatePaymentRequest{
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
	}
}

func completedPayment(amount int64) *model.Payment {
	return &model.Payment{
		ID:            uuid.New(),
		Amount:        decimal.NewFromInt(amount),
		Currency:      "USD",
		Status:        model.PaymentStatusCompleted,
		CustomerEmail: "buyer@example.com",
		CreatedAt:     time.Now().UTC(),
	}
}

// =====================================================
// CREATE PAYMENT
// =====================================================

func TestCreatePaymentStoresResponseAndEnqueues(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-1", false)
	require.NoError(t, err)

	assert.Equal(t, 201, result.StatusCode)
	assert.False(t, result.Replayed)

	var envelope struct {
		Success bool                  `json:"success"`
		Data    model.PaymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(result.Body, &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, model.PaymentStatusPending, envelope.Data.Status)
	assert.True(t, envelope.Data.Amount.Equal(decimal.NewFromInt(100)))

	// Stored record carries the exact bytes the client got
	record, ok := f.idemRepo.records["key-1"]
	require.True(t, ok)
	assert.Equal(t, result.Body, record.Response)
	assert.Equal(t, result.Body, f.cache.store[idempotencyCacheKey("key-1")])

	require.Len(t, f.enqueuer.payments, 1)
	assert.Equal(t, envelope.Data.ID, f.enqueuer.payments[0])
	assert.Equal(t, 1, f.txManager.committed)
}

func TestCreatePaymentReplaysStoredBytes(t *testing.T) {
	f := newFixture()

	first, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-replay", false)
	require.NoError(t, err)

	second, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-replay", false)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, 200, second.StatusCode)
	assert.Equal(t, first.Body, second.Body)

	// Replay must not create a second payment or re-enqueue
	assert.Len(t, f.paymentRepo.payments, 1)
	assert.Len(t, f.enqueuer.payments, 1)
}

func TestCreatePaymentReplayFallsBackToDatabase(t *testing.T) {
	f := newFixture()

	first, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-db", false)
	require.NoError(t, err)

	// Cache wiped (restart, eviction); the database record still answers
	f.cache.store = map[string][]byte{}

	second, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-db", false)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Body, second.Body)

	// Cache is backfilled for the next hit
	assert.Equal(t, first.Body, f.cache.store[idempotencyCacheKey("key-db")])
}

func TestCreatePaymentGeneratedKeySkipsReplay(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreatePayment(context.Background(), validRequest(), "gen-key", true)
	require.NoError(t, err)
	assert.Equal(t, 201, result.StatusCode)

	// Server-generated keys never store a replay record
	assert.Empty(t, f.idemRepo.records)
	assert.Empty(t, f.cache.store)
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.CustomerEmail = "not-an-email"

	_, err := f.svc.CreatePayment(context.Background(), req, "key-bad", false)
	require.Error(t, err)

	var perr *model.PaymentError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, model.ErrCodeValidation, perr.Code)
	assert.Empty(t, f.paymentRepo.payments)
}

func TestCreatePaymentDefaultsCurrency(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.Currency = ""

	result, err := f.svc.CreatePayment(context.Background(), req, "key-cur", false)
	require.NoError(t, err)

	var envelope struct {
		Data model.PaymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(result.Body, &envelope))
	assert.Equal(t, model.DefaultCurrency, envelope.Data.Currency)
}

func TestCreatePaymentDuplicateKeyRace(t *testing.T) {
	f := newFixture()

	// The winner's payment exists but its idempotency record does not
	// yet (the race window): the loser answers from the payments table.
	winner := completedPayment(100)
	winner.IdempotencyKey = "key-race"
	f.paymentRepo.add(winner)
	f.paymentRepo.createErr = model.ErrDuplicateKey

	result, err := f.svc.CreatePayment(context.Background(), validRequest(), "key-race", false)
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Equal(t, 200, result.StatusCode)

	var envelope struct {
		Data model.PaymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(result.Body, &envelope))
	assert.Equal(t, winner.ID, envelope.Data.ID)
	require.NotNil(t, envelope.Data.Message)
	assert.Equal(t, "Payment already exists", *envelope.Data.Message)
}

// =====================================================
// REFUNDS
// =====================================================

func decodeRefund(t *testing.T, body []byte) model.RefundResponse {
	t.Helper()
	var envelope struct {
		Success bool                 `json:"success"`
		Data    model.RefundResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.True(t, envelope.Success)
	return envelope.Data
}

func TestRequestRefundFullAmountMovesToRefunded(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	result, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{}, "refund-1", false)
	require.NoError(t, err)
	assert.Equal(t, 201, result.StatusCode)

	// Omitted amount defaults to the full remaining budget
	resp := decodeRefund(t, result.Body)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, model.PaymentStatusRefunded, resp.PaymentStatus)
	assert.Equal(t, model.PaymentStatusRefunded, payment.Status)
	assert.Equal(t, model.RefundStatusProcessed, resp.Status)

	// Stored record carries the exact bytes the client got
	record, ok := f.idemRepo.records["refund-1"]
	require.True(t, ok)
	assert.Equal(t, result.Body, record.Response)

	// Both refund events fan out and get delivery cues
	require.Len(t, f.outbox.emitted, 2)
	assert.Equal(t, webhookmodel.EventRefundCreated, f.outbox.emitted[0].eventType)
	assert.Equal(t, webhookmodel.EventRefundProcessed, f.outbox.emitted[1].eventType)
	assert.Len(t, f.enqueuer.deliveries, 2)
	assert.Equal(t, 1, f.txManager.committed)
}

func TestRequestRefundPartialAmountMovesToPartialRefunded(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	amount := decimal.NewFromInt(40)
	result, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, "refund-partial", false)
	require.NoError(t, err)

	resp := decodeRefund(t, result.Body)
	assert.Equal(t, model.PaymentStatusPartialRefunded, resp.PaymentStatus)
	assert.Equal(t, model.PaymentStatusPartialRefunded, payment.Status)

	data := f.outbox.emitted[0].data
	assert.Equal(t, "40", data["amount"])
	assert.Equal(t, payment.ID.String(), data["payment_id"])
}

func TestRequestRefundReplaysStoredBytes(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	amount := decimal.NewFromInt(40)
	first, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, "refund-retry", false)
	require.NoError(t, err)
	assert.Equal(t, 201, first.StatusCode)

	// A client retrying after a lost response gets the original bytes,
	// not a second refund.
	second, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, "refund-retry", false)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, 200, second.StatusCode)
	assert.Equal(t, first.Body, second.Body)

	assert.Len(t, f.refundRepo.refunds, 1)
	assert.Len(t, f.outbox.emitted, 2)
	assert.Equal(t, 1, f.txManager.committed)
}

func TestRequestRefundReplayFallsBackToDatabase(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	first, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{}, "refund-db", false)
	require.NoError(t, err)

	f.cache.store = map[string][]byte{}

	second, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{}, "refund-db", false)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Body, second.Body)
	assert.Len(t, f.refundRepo.refunds, 1)
}

func TestRequestRefundGeneratedKeySkipsReplay(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	amount := decimal.NewFromInt(40)
	result, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, uuid.NewString(), true)
	require.NoError(t, err)
	assert.Equal(t, 201, result.StatusCode)

	// Server-generated keys never store a replay record
	assert.Empty(t, f.idemRepo.records)
	assert.Empty(t, f.cache.store)
}

func TestRequestRefundDuplicateKeyRace(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	// The winner's record exists but the loser's replay check ran
	// before it committed: the insert conflicts and the loser answers
	// with the winner's bytes.
	winnerBody := []byte(`{"success":true,"data":{"id":"winner"}}`)
	f.idemRepo.records["refund-race"] = &model.IdempotencyRecord{
		Key:       "refund-race",
		Response:  winnerBody,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	f.idemRepo.lookupMisses = 1

	amount := decimal.NewFromInt(40)
	result, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, "refund-race", false)
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, winnerBody, result.Body)

	// The loser's transaction never committed, never enqueued
	assert.Equal(t, 0, f.txManager.committed)
	assert.Empty(t, f.enqueuer.deliveries)
}

func TestRequestRefundSecondRefundExhaustsBudget(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	payment.Status = model.PaymentStatusPartialRefunded
	f.paymentRepo.add(payment)
	f.refundRepo.sum = decimal.NewFromInt(40)

	result, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{}, "refund-2", false)
	require.NoError(t, err)

	// Remaining budget is 60; defaulted amount closes it out
	resp := decodeRefund(t, result.Body)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, model.PaymentStatusRefunded, resp.PaymentStatus)
}

func TestRequestRefundExceedsRemaining(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)
	f.refundRepo.sum = decimal.NewFromInt(80)

	amount := decimal.NewFromInt(30)
	_, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{Amount: &amount}, "refund-over", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRefundExceedsRemaining)

	// Nothing committed, nothing fanned out, nothing replayable
	assert.Equal(t, 0, f.txManager.committed)
	assert.Empty(t, f.outbox.emitted)
	assert.Empty(t, f.idemRepo.records)
	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
}

func TestRequestRefundRejectsNonRefundableStates(t *testing.T) {
	for _, status := range []string{
		model.PaymentStatusPending,
		model.PaymentStatusFailed,
		model.PaymentStatusRefunded,
	} {
		f := newFixture()
		payment := completedPayment(100)
		payment.Status = status
		f.paymentRepo.add(payment)

		_, err := f.svc.RequestRefund(context.Background(), payment.ID, &model.CreateRefundRequest{}, uuid.NewString(), true)
		require.Error(t, err, "status %s", status)
		assert.ErrorIs(t, err, model.ErrInvalidState, "status %s", status)
	}
}

func TestRequestRefundUnknownPayment(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RequestRefund(context.Background(), uuid.New(), &model.CreateRefundRequest{}, uuid.NewString(), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)
}

// =====================================================
// PROCESSOR
// =====================================================

func TestProcessPaymentSuccessEmitsCompletedEvent(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	payment.Status = model.PaymentStatusPending
	f.paymentRepo.add(payment)

	require.NoError(t, f.svc.ProcessPayment(context.Background(), payment.ID))

	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
	require.Len(t, f.outbox.emitted, 1)
	assert.Equal(t, webhookmodel.EventPaymentCompleted, f.outbox.emitted[0].eventType)

	data := f.outbox.emitted[0].data
	assert.Equal(t, payment.ID.String(), data["payment_id"])
	assert.Equal(t, "100", data["amount"])
	assert.Equal(t, "USD", data["currency"])
	assert.NotContains(t, data, "reason")

	assert.Len(t, f.enqueuer.deliveries, 1)
}

func TestProcessPaymentFailureEmitsFailedEvent(t *testing.T) {
	f := newFixture()
	f.cfg.Payment.TestPaymentSuccess = false

	payment := completedPayment(100)
	payment.Status = model.PaymentStatusPending
	f.paymentRepo.add(payment)

	require.NoError(t, f.svc.ProcessPayment(context.Background(), payment.ID))

	assert.Equal(t, model.PaymentStatusFailed, payment.Status)
	require.Len(t, f.outbox.emitted, 1)
	assert.Equal(t, webhookmodel.EventPaymentFailed, f.outbox.emitted[0].eventType)
	assert.Equal(t, "card_declined", f.outbox.emitted[0].data["reason"])
}

func TestProcessPaymentAlreadySettledIsNoop(t *testing.T) {
	f := newFixture()
	payment := completedPayment(100)
	f.paymentRepo.add(payment)

	require.NoError(t, f.svc.ProcessPayment(context.Background(), payment.ID))

	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
	assert.Empty(t, f.outbox.emitted)
	assert.Empty(t, f.paymentRepo.casTo)
}

func TestProcessPaymentUnknownPaymentAcks(t *testing.T) {
	f := newFixture()

	// Unknown id must not error: returning one would make asynq retry
	// a task that can never succeed.
	require.NoError(t, f.svc.ProcessPayment(context.Background(), uuid.New()))
}

// =====================================================
// CLEANUP
// =====================================================

func TestCleanupIdempotencyKeys(t *testing.T) {
	f := newFixture()
	f.idemRepo.expired = 7

	removed, err := f.svc.CleanupIdempotencyKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, removed)
}

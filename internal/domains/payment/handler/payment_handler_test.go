package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate-backend/internal/domains/payment/model"
	"paygate-backend/internal/domains/payment/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubPaymentService returns canned results and records what the
// handler passed in.
type stubPaymentService struct {
	createResult *service.CreatePaymentResult
	createErr    error
	refundResult *service.RefundResult
	refundErr    error

	gotKey          string
	gotKeyGenerated bool
}

func (s *stubPaymentService) CreatePayment(_ context.Context, _ *model.CreatePaymentRequest, idemKey string, keyGenerated bool) (*service.CreatePaymentResult, error) {
	s.gotKey = idemKey
	s.gotKeyGenerated = keyGenerated
	return s.createResult, s.createErr
}

func (s *stubPaymentService) GetPayment(_ context.Context, _ uuid.UUID) (*model.PaymentDetailResponse, error) {
	return nil, model.ErrPaymentNotFound
}

func (s *stubPaymentService) ListPayments(_ context.Context, req *model.ListPaymentsRequest) ([]*model.Payment, int, error) {
	req.Normalize()
	return nil, 0, nil
}

func (s *stubPaymentService) RequestRefund(_ context.Context, _ uuid.UUID, _ *model.CreateRefundRequest, idemKey string, keyGenerated bool) (*service.RefundResult, error) {
	s.gotKey = idemKey
	s.gotKeyGenerated = keyGenerated
	if s.refundErr != nil {
		return nil, s.refundErr
	}
	if s.refundResult != nil {
		return s.refundResult, nil
	}
	return &service.RefundResult{
		Body:       []byte(`{"success":true}`),
		StatusCode: http.StatusCreated,
	}, nil
}

func (s *stubPaymentService) ProcessPayment(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubPaymentService) CleanupIdempotencyKeys(_ context.Context) (int, error) { return 0, nil }

func newRouter(stub *stubPaymentService) *gin.Engine {
	h := NewPaymentHandler(stub)
	r := gin.New()
	r.POST("/payments", h.CreatePayment)
	r.GET("/payments/:id", h.GetPayment)
	r.POST("/payments/:id/refund", h.CreateRefund)
	return r
}

func postPayment(r *gin.Engine, idemKey string) *httptest.ResponseRecorder {
	body := `{"amount":"100","currency":"USD","customer_email":"buyer@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idemKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePaymentPassesClientKey(t *testing.T) {
	stub := &stubPaymentService{
		createResult: &service.CreatePaymentResult{
			Body:       []byte(`{"success":true}`),
			StatusCode: http.StatusCreated,
		},
	}
	r := newRouter(stub)

	w := postPayment(r, "client-key-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "client-key-1", stub.gotKey)
	assert.False(t, stub.gotKeyGenerated)
	assert.Empty(t, w.Header().Get(HeaderIdempotencyKeyGenerated))

	// Body is written verbatim, not re-marshaled
	assert.Equal(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestCreatePaymentGeneratesKeyWhenMissing(t *testing.T) {
	stub := &stubPaymentService{
		createResult: &service.CreatePaymentResult{
			Body:       []byte(`{"success":true}`),
			StatusCode: http.StatusCreated,
		},
	}
	r := newRouter(stub)

	w := postPayment(r, "")

	generated := w.Header().Get(HeaderIdempotencyKeyGenerated)
	require.NotEmpty(t, generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	// The service got the minted key, flagged as server-generated
	assert.Equal(t, generated, stub.gotKey)
	assert.True(t, stub.gotKeyGenerated)
}

func TestCreatePaymentReplayStatus(t *testing.T) {
	stub := &stubPaymentService{
		createResult: &service.CreatePaymentResult{
			Body:       []byte(`{"success":true,"data":{"status":"pending"}}`),
			StatusCode: http.StatusOK,
			Replayed:   true,
		},
	}
	r := newRouter(stub)

	w := postPayment(r, "client-key-1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePaymentValidationError(t *testing.T) {
	stub := &stubPaymentService{
		createErr: model.NewValidationError("customer_email: must be a valid email address.", nil),
	}
	r := newRouter(stub)

	w := postPayment(r, "client-key-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, model.ErrCodeValidation, body.Error.Code)
}

func TestGetPaymentErrorMapping(t *testing.T) {
	r := newRouter(&stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/payments/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id never reaches the service
	req = httptest.NewRequest(http.MethodGet, "/payments/not-a-uuid", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postRefund(r *gin.Engine, paymentID, idemKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/"+paymentID+"/refund", bytes.NewBufferString(`{"amount":"40"}`))
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idemKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRefundPassesClientKey(t *testing.T) {
	stub := &stubPaymentService{}
	r := newRouter(stub)

	w := postRefund(r, uuid.NewString(), "refund-key-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "refund-key-1", stub.gotKey)
	assert.False(t, stub.gotKeyGenerated)
	assert.Empty(t, w.Header().Get(HeaderIdempotencyKeyGenerated))

	// Body is written verbatim, not re-marshaled
	assert.Equal(t, `{"success":true}`, w.Body.String())
}

func TestCreateRefundGeneratesKeyWhenMissing(t *testing.T) {
	stub := &stubPaymentService{}
	r := newRouter(stub)

	w := postRefund(r, uuid.NewString(), "")

	generated := w.Header().Get(HeaderIdempotencyKeyGenerated)
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, stub.gotKey)
	assert.True(t, stub.gotKeyGenerated)
}

func TestCreateRefundReplayStatus(t *testing.T) {
	stub := &stubPaymentService{
		refundResult: &service.RefundResult{
			Body:       []byte(`{"success":true,"data":{"status":"processed"}}`),
			StatusCode: http.StatusOK,
			Replayed:   true,
		},
	}
	r := newRouter(stub)

	w := postRefund(r, uuid.NewString(), "refund-key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"success":true,"data":{"status":"processed"}}`, w.Body.String())
}

func TestCreateRefundErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid state", model.NewInvalidStateError(model.PaymentStatusPending), http.StatusBadRequest},
		{"budget exceeded", model.NewRefundExceedsRemainingError("30", "20"), http.StatusBadRequest},
		{"not found", model.NewPaymentNotFoundError(uuid.NewString()), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&stubPaymentService{refundErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/payments/"+uuid.NewString()+"/refund", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

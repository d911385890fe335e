package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CharlesX20/chimestradingstore/middleware"
	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	refreshes   atomic.Int32
	orders      atomic.Int32
	refreshGate chan struct{}
	lastOrder   models.CheckoutRequest
	mu          sync.Mutex
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		if f.refreshGate != nil {
			<-f.refreshGate
		}
		if _, err := r.Cookie(middleware.RefreshTokenCookie); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"No refresh token provided"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: middleware.AccessTokenCookie, Value: "fresh", Path: "/"})
		_, _ = w.Write([]byte(`{"message":"Token refreshed successfully"}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: middleware.AccessTokenCookie, Value: "stale", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: middleware.RefreshTokenCookie, Value: "refresh", Path: "/"})
		_, _ = w.Write([]byte(`{"_id":"u1","name":"Ada","email":"ada@example.com","role":"customer"}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		f.orders.Add(1)
		if c, err := r.Cookie(middleware.AccessTokenCookie); err != nil || c.Value != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Access token expired"}`))
			return
		}
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.lastOrder)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderId":"665f1c2a9b1e8a0012345678","receiptUrl":"https://img.example/r.png","whatsappUrl":"https://wa.me/1?text=x"}`))
	})
	return mux
}

func newTestClient(t *testing.T, store *fakeStore) *Client {
	t.Helper()
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	c.now = preflightNow
	return c
}

func TestSubmitOrder_RefreshesOnceAndRetries(t *testing.T) {
	store := &fakeStore{}
	c := newTestClient(t, store)
	ctx := context.Background()

	profile, err := c.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)

	resp, err := c.SubmitOrder(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, "665f1c2a9b1e8a0012345678", resp.OrderID)
	assert.Equal(t, "https://img.example/r.png", resp.ReceiptURL)
	assert.Equal(t, int32(1), store.refreshes.Load())
	assert.Equal(t, int32(2), store.orders.Load())

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.True(t, strings.HasPrefix(store.lastOrder.Receipt, "data:image/png;base64,"))
	assert.Equal(t, "Ada", store.lastOrder.BuyerName)
	assert.Len(t, store.lastOrder.Items, 1)
}

func TestSubmitOrder_FailedRefreshReturnsOriginalError(t *testing.T) {
	store := &fakeStore{}
	c := newTestClient(t, store)

	_, err := c.SubmitOrder(context.Background(), validForm())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Access token expired", apiErr.Message)
	assert.Equal(t, int32(1), store.refreshes.Load())
	assert.Equal(t, int32(1), store.orders.Load())
}

func TestSubmitOrder_PreflightStopsRequest(t *testing.T) {
	store := &fakeStore{}
	c := newTestClient(t, store)
	form := validForm()
	form.BuyerName = ""

	_, err := c.SubmitOrder(context.Background(), form)

	var perr *PreflightError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, int32(0), store.orders.Load())
}

func TestRefresh_ConcurrentCallersShareOneRequest(t *testing.T) {
	store := &fakeStore{refreshGate: make(chan struct{})}
	c := newTestClient(t, store)
	_, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Refresh(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(store.refreshGate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), store.refreshes.Load())
}

func TestAuthEndpointsAreNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

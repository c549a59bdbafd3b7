package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCartHandler_Sync(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, zerolog.Nop())

	svc.On("Sync", mock.Anything, testUserID, mock.MatchedBy(func(req *model.CartSyncRequest) bool {
		return len(req.Items) == 1 && req.Items[0].ProductID == 3 && *req.Items[0].Quantity == 2
	})).Return([]model.CartLine{{UserID: testUserID, ProductID: 3, Quantity: 2}}, nil)

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/cart", strings.NewReader(`{"items":[{"productId":3,"quantity":2}]}`)))
	w := httptest.NewRecorder()

	h.Sync(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"productId":3`)
	svc.AssertExpectations(t)
}

func TestCartHandler_Sync_InvalidQuantity(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, zerolog.Nop())

	svc.On("Sync", mock.Anything, testUserID, mock.Anything).Return(nil, model.ErrInvalidQuantity)

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/cart", strings.NewReader(`{"items":[{"productId":3,"quantity":0}]}`)))
	w := httptest.NewRecorder()

	h.Sync(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeInvalidQuantity)
}

func TestCartHandler_Get_RequiresUser(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

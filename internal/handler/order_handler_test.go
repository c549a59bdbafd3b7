package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_GetMine(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		param          string
		mockReturn     *model.OrderDetails
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Own order",
			param:          id.String(),
			mockReturn:     &model.OrderDetails{Order: model.Order{ID: id, UserID: testUserID}},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Foreign or missing order",
			param:          id.String(),
			mockError:      model.ErrOrderNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Malformed ID",
			param:          "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			if tt.expectService {
				svc.On("GetForUser", mock.Anything, testUserID, id).Return(tt.mockReturn, tt.mockError)
			}

			req := withParam(withUser(httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.param, nil)), "id", tt.param)
			w := httptest.NewRecorder()

			h.GetMine(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		filter         model.OrderListFilter
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Defaults",
			filter:         model.OrderListFilter{Page: 1, Limit: 10},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Status filter",
			query: "?status=pending&page=2&limit=5",
			filter: func() model.OrderListFilter {
				s := model.OrderStatusPending
				return model.OrderListFilter{Status: &s, Page: 2, Limit: 5}
			}(),
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Unknown status",
			query: "?status=lost",
			filter: func() model.OrderListFilter {
				s := model.OrderStatus("lost")
				return model.OrderListFilter{Status: &s, Page: 1, Limit: 10}
			}(),
			mockError:      model.ErrInvalidOrderStatus,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad page",
			query:          "?page=x",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			if tt.expectService {
				var page *model.OrderPage
				if tt.mockError == nil {
					page = &model.OrderPage{Orders: []model.Order{}, Page: tt.filter.Page}
				}
				svc.On("List", mock.Anything, tt.filter).Return(page, tt.mockError)
			}

			w := httptest.NewRecorder()
			h.List(w, httptest.NewRequest(http.MethodGet, "/api/admin/orders"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	id := uuid.New()

	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	svc.On("UpdateStatus", mock.Anything, id, model.OrderStatusShipped).
		Return(&model.OrderDetails{Order: model.Order{ID: id, Status: model.OrderStatusShipped}}, nil)

	req := withParam(httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+id.String()+"/status",
		strings.NewReader(`{"status":"shipped"}`)), "id", id.String())
	w := httptest.NewRecorder()

	h.UpdateStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.OrderDetails
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, model.OrderStatusShipped, got.Status)
}

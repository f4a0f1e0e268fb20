package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"biju-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_GetAll(t *testing.T) {
	products := []model.Product{
		{ID: "P001", Name: "Brinco Argola", Price: decimal.RequireFromString("59.90")},
		{ID: "P002", Name: "Brinco Pérola", Price: decimal.RequireFromString("39.90")},
	}

	tests := []struct {
		name           string
		query          string
		setup          func(*MockProductService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Default pagination",
			query:          "",
			setup:          func(m *MockProductService) { m.On("GetAll", mock.Anything, 10, 0).Return(products, nil) },
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Custom pagination",
			query:          "?limit=5&offset=10",
			setup:          func(m *MockProductService) { m.On("GetAll", mock.Anything, 5, 10).Return(products[:1], nil) },
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid limit",
			query:          "?limit=abc",
			setup:          func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset",
			query:          "?offset=xyz",
			setup:          func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			query:          "",
			setup:          func(m *MockProductService) { m.On("GetAll", mock.Anything, 10, 0).Return(nil, errors.New("db down")) },
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			tt.setup(svc)
			h := NewProductHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			w := httptest.NewRecorder()
			h.GetAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Len(t, got, tt.expectedCount)
			} else {
				var errResp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	product := &model.Product{ID: "P001", Name: "Brinco Argola", Price: decimal.RequireFromString("59.90")}

	tests := []struct {
		name           string
		id             string
		setup          func(*MockProductService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Found",
			id:             "P001",
			setup:          func(m *MockProductService) { m.On("GetByID", mock.Anything, "P001").Return(product, nil) },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			id:             "P999",
			setup:          func(m *MockProductService) { m.On("GetByID", mock.Anything, "P999").Return(nil, model.ErrProductNotFound) },
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeProductNotFound,
		},
		{
			name:           "Missing ID",
			id:             "",
			setup:          func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			tt.setup(svc)
			h := NewProductHandler(svc, zerolog.Nop())

			req := withRoute(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil), "", map[string]string{"id": tt.id})
			w := httptest.NewRecorder()
			h.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var errResp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.expectedCode, errResp.Error)
			}
		})
	}
}

func TestProductHandler_Categories(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetCategories", mock.Anything).Return([]model.Category{{ID: "C001", Slug: "brincos"}}, nil)
	svc.On("GetByCategory", mock.Anything, "brincos", 10, 0).Return([]model.Product{{ID: "P001"}}, nil)
	svc.On("GetByCategory", mock.Anything, "tiaras", 10, 0).Return(nil, model.ErrCategoryNotFound)
	h := NewProductHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.GetCategories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.GetByCategory(w, withRoute(httptest.NewRequest(http.MethodGet, "/api/categories/brincos/products", nil), "", map[string]string{"slug": "brincos"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.GetByCategory(w, withRoute(httptest.NewRequest(http.MethodGet, "/api/categories/tiaras/products", nil), "", map[string]string{"slug": "tiaras"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package repository

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/models"
)

func TestBuildOrderFilter(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	customerID := uuid.New()
	paymentID := uuid.New()
	identify := 42

	tests := []struct {
		name      string
		filter    models.OrderFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			"no filters",
			models.OrderFilter{},
			"WHERE tenant_id = $1",
			[]interface{}{tenantID},
		},
		{
			"identify only",
			models.OrderFilter{Identify: &identify},
			"WHERE tenant_id = $1 AND identify = $2",
			[]interface{}{tenantID, identify},
		},
		{
			"customer only",
			models.OrderFilter{CustomerID: &customerID},
			"WHERE tenant_id = $1 AND customer_id = $2",
			[]interface{}{tenantID, customerID},
		},
		{
			"all filters keep placeholder order",
			models.OrderFilter{
				Identify:   &identify,
				UserID:     &userID,
				CustomerID: &customerID,
				PaymentID:  &paymentID,
			},
			"WHERE tenant_id = $1 AND identify = $2 AND user_id = $3 AND customer_id = $4 AND payment_id = $5",
			[]interface{}{tenantID, identify, userID, customerID, paymentID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildOrderFilter(tenantID, tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildProductFilter(t *testing.T) {
	tenantID := uuid.New()
	categoryID := uuid.New()
	active := true

	tests := []struct {
		name      string
		filter    models.ProductFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			"no filters",
			models.ProductFilter{},
			"WHERE tenant_id = $1",
			[]interface{}{tenantID},
		},
		{
			"name match wraps with wildcards",
			models.ProductFilter{Name: "espresso"},
			"WHERE tenant_id = $1 AND name ILIKE $2",
			[]interface{}{tenantID, "%espresso%"},
		},
		{
			"skipped name does not shift later placeholders",
			models.ProductFilter{CategoryID: &categoryID, Active: &active},
			"WHERE tenant_id = $1 AND category_id = $2 AND active = $3",
			[]interface{}{tenantID, categoryID, active},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildProductFilter(tenantID, tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

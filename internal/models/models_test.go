package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedback_LabelsPreferNestedShape(t *testing.T) {
	t.Parallel()

	var nested Feedback
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"user":{"id":42,"name":"Jane"},"product":{"id":5,"name":"Lamp"},"rating":4,"comment":"ok"}`), &nested))
	assert.Equal(t, "Jane", nested.UserLabel())
	assert.Equal(t, "Lamp", nested.ProductLabel())

	var flat Feedback
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"userId":7,"userName":"Bob","productId":3,"productName":"Desk","rating":2,"comment":"meh","status":"Resolved"}`), &flat))
	assert.Equal(t, "Bob", flat.UserLabel())
	assert.Equal(t, "Desk", flat.ProductLabel())
	assert.Equal(t, StatusResolved, flat.EffectiveStatus())
}

func TestFeedback_EmptyStatusIsPending(t *testing.T) {
	t.Parallel()
	assert.Equal(t, StatusPending, Feedback{}.EffectiveStatus())
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Status
		wantOK bool
	}{
		{"Pending", StatusPending, true},
		{"Resolved", StatusResolved, true},
		{"Rejected", StatusRejected, true},
		{"pending", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseStatus(tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNewFeedback_WireShape(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(NewFeedback{
		Rating:  3,
		Comment: "ok",
		User:    Ref{ID: 42},
		Product: Ref{ID: 5},
		Status:  StatusPending,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rating":3,"comment":"ok","user":{"id":42},"product":{"id":5},"status":"Pending"}`, string(body))
}

func TestProduct_PriceIsJSONNumber(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(Product{Name: "Lamp", Description: "desk lamp", Price: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Lamp","description":"desk lamp","price":12.5}`, string(body))

	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"name":"Lamp","description":"d","price":19.99,"cost":4,"discount":10}`), &p))
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
	require.NotNil(t, p.Cost)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(4)))
	require.NotNil(t, p.Discount)
	assert.Equal(t, 10, *p.Discount)
}

func TestFeedbackUpdate_OmitsUnsetFields(t *testing.T) {
	t.Parallel()

	st := StatusResolved
	body, err := json.Marshal(FeedbackUpdate{Status: &st})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Resolved"}`, string(body))
}

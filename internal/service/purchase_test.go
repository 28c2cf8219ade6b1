package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
)

func TestTotal(t *testing.T) {
	t.Parallel()

	items := []models.PurchaseItem{
		{Price: 19.99, Quantity: 3},
		{Price: 0.1, Quantity: 3},
		{Price: 0, Quantity: 5},
	}
	assert.Equal(t, "60.27", Total(items).StringFixed(2))
}

func TestPurchaseService_Create_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	gid := uuid.NewString()

	tests := []struct {
		name  string
		items []ItemInput
	}{
		{name: "no items", items: nil},
		{name: "bad game id", items: []ItemInput{{GameID: "nope", Price: 1, Quantity: 1}}},
		{name: "nil game id", items: []ItemInput{{GameID: uuid.Nil.String(), Price: 1, Quantity: 1}}},
		{name: "zero quantity", items: []ItemInput{{GameID: gid, Price: 1, Quantity: 0}}},
		{name: "negative price", items: []ItemInput{{GameID: gid, Price: -1, Quantity: 1}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Purchases.Create(ctx, uuid.New(), tt.items)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, e.Receipts.Receipts())
}

func TestPurchaseService_Create(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()

	p, err := e.Purchases.Create(ctx, user, []ItemInput{
		{GameID: uuid.NewString(), Title: "Celeste", Price: 19.99, Quantity: 2},
		{GameID: uuid.NewString(), Title: "Hades", Price: 24.99, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, user, p.UserID)
	assert.Equal(t, models.PurchasePending, p.Status)
	assert.Equal(t, 64.97, p.TotalAmount)

	assert.Equal(t, []string{events.PurchaseCreated}, e.Events.Types(events.TopicPurchases))
	receipts := e.Receipts.Receipts()
	require.Len(t, receipts, 1)
	assert.Equal(t, p.ID, receipts[0].PurchaseID)
	assert.Equal(t, fixedNow, receipts[0].CapturedAt)

	list, err := e.Purchases.List(ctx, user, false, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)
}

func TestPurchaseService_Create_QueueFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.Receipts.Err = errBoom
	e.Events.Err = errBoom

	p, err := e.Purchases.Create(context.Background(), uuid.New(), []ItemInput{
		{GameID: uuid.NewString(), Price: 5, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.TotalAmount)
}

func TestPurchaseService_List_Access(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := e.Purchases.Create(ctx, bob, []ItemInput{{GameID: uuid.NewString(), Price: 1, Quantity: 1}})
	require.NoError(t, err)

	_, err = e.Purchases.List(ctx, alice, false, bob.String())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.Purchases.List(ctx, alice, true, "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)

	own, err := e.Purchases.List(ctx, bob, false, bob.String())
	require.NoError(t, err)
	assert.Len(t, own, 1)

	asAdmin, err := e.Purchases.List(ctx, alice, true, bob.String())
	require.NoError(t, err)
	assert.Len(t, asAdmin, 1)

	mine, err := e.Purchases.List(ctx, alice, false, "")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

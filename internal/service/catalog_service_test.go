package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func testDeliveryOptions() []domain.DeliveryOption {
	return []domain.DeliveryOption{
		{Value: "lagos-island", Name: "Lagos Island", Price: domain.NewMoney(1500), State: "Lagos"},
		{Value: "pickup", Name: "Store pickup", Price: domain.NewMoney(0)},
		{Value: "oyo-towns", Name: "Oyo towns", Price: domain.NewMoney(2000), CustomCityTriggers: []string{"ogbomoso"}, State: "Oyo"},
	}
}

func TestDeliveryOptions_CachedAfterFirstRead(t *testing.T) {
	repo := &mockCatalogRepository{options: testDeliveryOptions()}
	c := newMockCache()
	sut := NewCatalogService(repo, c, nil)

	options, err := sut.DeliveryOptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, options, 3)

	require.Eventually(t, c.cachedOptions, defaultWait, defaultTick)

	_, err = sut.DeliveryOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.optionCalls.Load())
}

func TestDeliveryOptions_RepoError(t *testing.T) {
	repo := &mockCatalogRepository{err: errors.New("store down")}
	sut := NewCatalogService(repo, newMockCache(), nil)

	_, err := sut.DeliveryOptions(context.Background())
	assert.ErrorContains(t, err, "store down")
}

func TestDeliveryOptionsForState(t *testing.T) {
	sut := NewCatalogService(&mockCatalogRepository{options: testDeliveryOptions()}, newMockCache(), nil)

	values := func(state string) []string {
		options, err := sut.DeliveryOptionsForState(context.Background(), state)
		require.NoError(t, err)
		var out []string
		for _, o := range options {
			out = append(out, o.Value)
		}
		return out
	}

	assert.Equal(t, []string{"lagos-island", "pickup"}, values("lagos"))
	assert.Equal(t, []string{"pickup", "oyo-towns"}, values("Oyo"))
	assert.Equal(t, []string{"lagos-island", "pickup", "oyo-towns"}, values(""))
}

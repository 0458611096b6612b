package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipPolicy(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("HasMember", ctx, "alice", int64(1)).Return(true, nil)
	repo.On("HasMember", ctx, "bob", int64(1)).Return(false, nil)

	p := NewMembershipPolicy(repo)

	ok, err := p.CanAccessPortfolio(ctx, "alice", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.CanAccessPortfolio(ctx, "bob", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.CanAccessPortfolio(ctx, "", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNumberOfCalls(t, "HasMember", 2)
}

func TestAllowAll(t *testing.T) {
	ok, err := AllowAll.CanAccessPortfolio(context.Background(), "", 99)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPortfolio_Validate(t *testing.T) {
	assert.NoError(t, (&Portfolio{ID: 1, Name: "Core"}).Validate())
	assert.Error(t, (&Portfolio{ID: 0, Name: "Core"}).Validate())
	assert.Error(t, (&Portfolio{ID: 1, Name: "  "}).Validate())
}

func TestBhipPrice_PriceFor(t *testing.T) {
	b := bhip(CostTypeClient, 1, 10, 20)
	assert.Equal(t, "10", b.PriceFor(true).String())
	assert.Equal(t, "20", b.PriceFor(false).String())

	var none *BhipPrice
	assert.True(t, none.PriceFor(true).IsZero())
	assert.True(t, CostTypeClient.IsValid())
	assert.False(t, CostType("Team").IsValid())
}

//Personal.AI order the ending

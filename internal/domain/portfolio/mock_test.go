package portfolio

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Portfolio), args.Error(1)
}

func (m *mockRepository) FindClient(ctx context.Context, id int64) (*Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockRepository) FindBhipPrice(ctx context.Context, costType CostType, costID int64) (*BhipPrice, error) {
	args := m.Called(ctx, costType, costID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BhipPrice), args.Error(1)
}

func (m *mockRepository) HasMember(ctx context.Context, userID string, portfolioID int64) (bool, error) {
	args := m.Called(ctx, userID, portfolioID)
	return args.Bool(0), args.Error(1)
}

//Personal.AI order the ending

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDynamo is a mock implementation of DynamoAPI.
type MockDynamo struct {
	mock.Mock
}

func (m *MockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func newDynamoStore(client DynamoAPI) *dynamoReceiptStore {
	return NewDynamoReceiptStoreWithClient(client, "receipts", zerolog.Nop()).(*dynamoReceiptStore)
}

func TestDynamoReceiptStore_CreateWritesTTLOnlyWhenPositive(t *testing.T) {
	tests := []struct {
		name    string
		ttl     int64
		wantTTL bool
	}{
		{name: "Pending receipt expires", ttl: 1750000000, wantTTL: true},
		{name: "Settled receipt never expires", ttl: model.TTLDisabled, wantTTL: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockDynamo)
			store := newDynamoStore(client)

			r := sampleReceipt("0xmerchant", "01A")
			r.TTL = tt.ttl

			client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
				_, hasTTL := in.Item["ttl"]
				return aws.ToString(in.TableName) == "receipts" &&
					aws.ToString(in.ConditionExpression) == "attribute_not_exists(receiptId)" &&
					hasTTL == tt.wantTTL
			})).Return(&dynamodb.PutItemOutput{}, nil)

			require.NoError(t, store.Create(context.Background(), r))
			client.AssertExpectations(t)
		})
	}
}

func TestDynamoReceiptStore_CreateExisting(t *testing.T) {
	client := new(MockDynamo)
	store := newDynamoStore(client)

	client.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional request failed")})

	err := store.Create(context.Background(), sampleReceipt("0xmerchant", "01A"))
	assert.ErrorIs(t, err, model.ErrReceiptExists)
}

func TestDynamoReceiptStore_GetRoundTrip(t *testing.T) {
	client := new(MockDynamo)
	store := newDynamoStore(client)

	r := sampleReceipt("0xmerchant", "01A")
	r.TaxRate = "0.0725"
	r.Version = 4
	av, err := store.marshal(r)
	require.NoError(t, err)

	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: av}, nil).Once()
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()

	got, err := store.Get(context.Background(), "0xmerchant", "01A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0.0725", got.TaxRate)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, r.LineItems, got.LineItems)

	missing, err := store.Get(context.Background(), "0xmerchant", "01B")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDynamoReceiptStore_CompareAndSwap(t *testing.T) {
	t.Run("Success bumps version", func(t *testing.T) {
		client := new(MockDynamo)
		store := newDynamoStore(client)

		client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			expected, ok := in.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN)
			version, vok := in.Item["version"].(*types.AttributeValueMemberN)
			return in.ConditionExpression != nil && ok && expected.Value == "3" && vok && version.Value == "4"
		})).Return(&dynamodb.PutItemOutput{}, nil)

		r := sampleReceipt("0xmerchant", "01A")
		r.Version = 3
		require.NoError(t, store.CompareAndSwap(context.Background(), r, 3))
		assert.Equal(t, int64(4), r.Version)
		client.AssertExpectations(t)
	})

	t.Run("Condition failure is a version conflict", func(t *testing.T) {
		client := new(MockDynamo)
		store := newDynamoStore(client)

		client.On("PutItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional request failed")})

		r := sampleReceipt("0xmerchant", "01A")
		err := store.CompareAndSwap(context.Background(), r, 1)
		assert.ErrorIs(t, err, model.ErrVersionConflict)
		assert.Equal(t, int64(1), r.Version)
	})

	t.Run("Other errors are wrapped", func(t *testing.T) {
		client := new(MockDynamo)
		store := newDynamoStore(client)

		client.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		err := store.CompareAndSwap(context.Background(), sampleReceipt("0xmerchant", "01A"), 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrVersionConflict)
		assert.Contains(t, err.Error(), "failed to swap receipt")
	})
}

func TestDynamoReceiptStore_ListByWallet(t *testing.T) {
	client := new(MockDynamo)
	store := newDynamoStore(client)

	newer, err := store.marshal(sampleReceipt("0xmerchant", "01B"))
	require.NoError(t, err)
	older, err := store.marshal(sampleReceipt("0xmerchant", "01A"))
	require.NoError(t, err)
	broken := map[string]types.AttributeValue{
		"wallet":    &types.AttributeValueMemberS{Value: "0xmerchant"},
		"receiptId": &types.AttributeValueMemberS{Value: "01C"},
		"doc":       &types.AttributeValueMemberS{Value: "{not json"},
	}

	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return !aws.ToBool(in.ScanIndexForward) && aws.ToInt32(in.Limit) == 5
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{broken, newer, older}}, nil)

	receipts, err := store.ListByWallet(context.Background(), "0xmerchant", 5)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "01B", receipts[0].ReceiptID)
	assert.Equal(t, "01A", receipts[1].ReceiptID)
}

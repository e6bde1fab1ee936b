package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// DynamoAPI is the subset of the DynamoDB client the receipt store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// receiptItem is the stored shape. The receipt itself travels as JSON in Doc
// so decimal strings and nested lines round-trip exactly; the remaining
// attributes exist for keys, conditions and expiry.
type receiptItem struct {
	Wallet    string `dynamodbav:"wallet"`
	ReceiptID string `dynamodbav:"receiptId"`
	Status    string `dynamodbav:"status"`
	Version   int64  `dynamodbav:"version"`
	TTL       int64  `dynamodbav:"ttl,omitempty"`
	Doc       string `dynamodbav:"doc"`
}

// dynamoReceiptStore implements ReceiptStore on a DynamoDB table keyed by
// wallet (partition) and receiptId (sort).
type dynamoReceiptStore struct {
	client DynamoAPI
	table  string
	logger zerolog.Logger
}

// NewDynamoReceiptStore creates a receipt store backed by a new DynamoDB
// client. A non-empty endpoint targets DynamoDB Local with static credentials.
func NewDynamoReceiptStore(ctx context.Context, table, region, endpoint string, logger zerolog.Logger) (ReceiptStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoReceiptStoreWithClient(client, table, logger), nil
}

// NewDynamoReceiptStoreWithClient creates a receipt store on an existing client.
func NewDynamoReceiptStoreWithClient(client DynamoAPI, table string, logger zerolog.Logger) ReceiptStore {
	return &dynamoReceiptStore{
		client: client,
		table:  table,
		logger: logger.With().Str("repository", "receipt_dynamo").Logger(),
	}
}

func (s *dynamoReceiptStore) marshal(r *model.Receipt) (map[string]types.AttributeValue, error) {
	doc, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	item := receiptItem{
		Wallet:    r.Wallet,
		ReceiptID: r.ReceiptID,
		Status:    r.Status,
		Version:   r.Version,
		Doc:       string(doc),
	}
	// DynamoDB only expires positive epoch seconds; a settled receipt simply
	// carries no ttl attribute.
	if r.TTL > 0 {
		item.TTL = r.TTL
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal receipt item: %w", err)
	}
	return av, nil
}

func unmarshalReceipt(av map[string]types.AttributeValue) (*model.Receipt, error) {
	var item receiptItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt item: %w", err)
	}
	var r model.Receipt
	if err := json.Unmarshal([]byte(item.Doc), &r); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	r.Version = item.Version
	return &r, nil
}

func (s *dynamoReceiptStore) Create(ctx context.Context, r *model.Receipt) error {
	av, err := s.marshal(r)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(receiptId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			s.logger.Debug().Str("receipt_id", r.ReceiptID).Msg("receipt already exists")
			return model.ErrReceiptExists
		}
		s.logger.Error().Err(err).Str("receipt_id", r.ReceiptID).Msg("failed to put receipt")
		return fmt.Errorf("failed to put receipt: %w", err)
	}
	return nil
}

func (s *dynamoReceiptStore) Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"wallet":    &types.AttributeValueMemberS{Value: wallet},
			"receiptId": &types.AttributeValueMemberS{Value: receiptID},
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("receipt_id", receiptID).Msg("failed to get receipt")
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return unmarshalReceipt(out.Item)
}

func (s *dynamoReceiptStore) CompareAndSwap(ctx context.Context, r *model.Receipt, expected int64) error {
	next := r.Clone()
	next.Version = expected + 1
	av, err := s.marshal(next)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(receiptId) AND #v = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#v": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			s.logger.Debug().Str("receipt_id", r.ReceiptID).Int64("expected", expected).Msg("receipt version conflict")
			return model.ErrVersionConflict
		}
		s.logger.Error().Err(err).Str("receipt_id", r.ReceiptID).Msg("failed to swap receipt")
		return fmt.Errorf("failed to swap receipt: %w", err)
	}

	r.Version = next.Version
	return nil
}

func (s *dynamoReceiptStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.Receipt, error) {
	if limit < 1 {
		return []model.Receipt{}, nil
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#w = :wallet"),
		ExpressionAttributeNames: map[string]string{
			"#w": "wallet",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":wallet": &types.AttributeValueMemberS{Value: wallet},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("failed to query receipts")
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}

	receipts := make([]model.Receipt, 0, len(out.Items))
	for _, av := range out.Items {
		r, err := unmarshalReceipt(av)
		if err != nil {
			s.logger.Warn().Err(err).Str("wallet", wallet).Msg("skipping undecodable receipt")
			continue
		}
		receipts = append(receipts, *r)
	}
	return receipts, nil
}

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/config"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/database"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testWallet   = "0x1111111111111111111111111111111111111111"
	testAPIKey   = "test-api-key"
	receiptTable = "receipts"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB creates a PostgreSQL test container with the schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	// Create connection pool
	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
	}
}

// SetupDynamo starts DynamoDB Local, creates the receipt table and returns
// its endpoint.
func SetupDynamo(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start dynamodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	if err != nil {
		t.Fatalf("failed to get dynamodb endpoint: %v", err)
	}

	createReceiptTable(t, endpoint)
	return endpoint
}

func createReceiptTable(t *testing.T, endpoint string) {
	t.Helper()

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	if err != nil {
		t.Fatalf("failed to load AWS config: %v", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(receiptTable),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("wallet"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("receiptId"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("wallet"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("receiptId"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		t.Fatalf("failed to create receipt table: %v", err)
	}
}

// SeedCatalog inserts a small cafe catalog, one automatic discount, one
// coupon and the merchant's tax config.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()

	inventory := repository.NewInventoryRepository(pool, logger)
	items := []model.InventoryItem{
		{ID: "latte", SKU: "LAT-1", Wallet: testWallet, Name: "Latte", PriceMinor: 1000, Taxable: true, Collections: []string{"drinks"}},
		{ID: "muffin", SKU: "MUF-1", Wallet: testWallet, Name: "Muffin", PriceMinor: 500, Taxable: true, Collections: []string{"food"}},
	}
	for i := range items {
		if err := inventory.Upsert(ctx, &items[i]); err != nil {
			t.Fatalf("failed to seed item %s: %v", items[i].ID, err)
		}
	}

	discounts := repository.NewDiscountRepository(pool, logger)
	seedDiscounts := []model.Discount{
		{
			ID: "drinks-10", Wallet: testWallet, Title: "Drinks 10% off",
			Type: model.DiscountPercentage, AppliesTo: model.AppliesToCollection, AppliesToIDs: []string{"drinks"},
			MinRequirement: model.MinRequirementNone, Value: decimal.NewFromInt(10),
			StartDate: time.Now().Add(-time.Hour), Status: model.DiscountActive,
		},
		{
			ID: "save5", Wallet: testWallet, Code: "SAVE5", Title: "Five off",
			Type: model.DiscountFixedAmount, AppliesTo: model.AppliesToAll,
			MinRequirement: model.MinRequirementNone, Value: decimal.NewFromInt(100),
			StartDate: time.Now().Add(-time.Hour), UsageLimit: 1, Status: model.DiscountActive,
		},
	}
	for i := range seedDiscounts {
		if err := discounts.Create(ctx, &seedDiscounts[i]); err != nil {
			t.Fatalf("failed to seed discount %s: %v", seedDiscounts[i].ID, err)
		}
	}

	tenants := repository.NewTenantConfigRepository(pool, logger)
	if err := tenants.Save(ctx, &model.TenantConfig{
		Wallet:   testWallet,
		Currency: "USD",
		Tax: model.TaxConfig{
			DefaultJurisdictionCode: "US-CA",
			Jurisdictions: []model.TaxJurisdiction{
				{Code: "US-CA", Rate: decimal.RequireFromString("0.08")},
			},
		},
	}); err != nil {
		t.Fatalf("failed to seed tenant config: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"inventory_items", "discounts", "tenant_configs", "brand_fees"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

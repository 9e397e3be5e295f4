//go:build e2e

// Package e2e contains end-to-end integration tests using a real DynamoDB table.
// Run with: go test -tags=e2e -v ./e2e/...
//
// Credentials come from the default AWS chain (AWS_PROFILE, env vars, ...).
// Set AWS_ENDPOINT_URL_DYNAMODB to run against DynamoDB Local.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/postbox/api"
	"github.com/jacentio/postbox/queue"
	"github.com/jacentio/postbox/store"
)

// Table names are unique per test run to avoid conflicts.
const tablePrefix = "postbox-e2e-test"

var (
	testID     string
	postsTable string

	ddbClient *dynamodb.Client
	testStore *store.Store
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// --- Test Setup & Teardown ---

func TestMain(m *testing.M) {
	testID = uuid.New().String()[:8]
	postsTable = fmt.Sprintf("%s-%s-posts", tablePrefix, testID)

	fmt.Printf("Test ID: %s\n", testID)
	fmt.Printf("Table: %s\n", postsTable)

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	ddbClient = dynamodb.NewFromConfig(cfg)

	if err := createTable(ctx); err != nil {
		fmt.Printf("Failed to create table: %v\n", err)
		os.Exit(1)
	}

	testStore = store.New(ddbClient, store.Config{TableName: postsTable})

	code := m.Run()

	if _, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(postsTable),
	}); err != nil {
		fmt.Printf("Warning: failed to delete table %s: %v\n", postsTable, err)
	}

	os.Exit(code)
}

func createTable(ctx context.Context) error {
	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(postsTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(store.AttrID), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(store.AttrID), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", postsTable, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(postsTable),
	}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", postsTable, err)
	}
	return nil
}

func newPost(title string) store.Post {
	return store.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      "body of " + title,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// --- Store Tests ---

func TestStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	post := newPost("create-and-find")

	if err := testStore.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := testStore.Find(ctx, post.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected post to exist")
	}
	if found.Title != post.Title || found.Body != post.Body {
		t.Errorf("unexpected post: %+v", found)
	}
	if !found.CreatedAt.Equal(post.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", post.CreatedAt, found.CreatedAt)
	}
}

func TestStore_FindMissing(t *testing.T) {
	found, err := testStore.Find(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for missing post, got %+v", found)
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	post := newPost("duplicate")

	if err := testStore.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := testStore.Create(ctx, post); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	post := newPost("delete")

	if err := testStore.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := testStore.Delete(ctx, post); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	found, err := testStore.Find(ctx, post.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != nil {
		t.Error("expected post to be deleted")
	}
}

// --- Handler Tests ---

func TestAPI_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	h := api.NewHandler(testStore, logger)

	resp, err := h.Route(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"title":"via api","body":"hello"}`,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	// Pull the generated id out of {"post":{"post_uuid":"..."
	const marker = `"post_uuid":"`
	start := strings.Index(resp.Body, marker) + len(marker)
	id := resp.Body[start : start+36]

	resp, err = h.Route(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{"uuid": id},
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestAPI_IndexFirstPage(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		if err := testStore.Create(ctx, newPost(fmt.Sprintf("page-%02d", i))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	resp, err := api.NewHandler(testStore, logger).Index(ctx, events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if n := strings.Count(resp.Body, `"post_uuid"`); n > int(api.ListPageSize) {
		t.Errorf("expected at most %d posts, got %d", api.ListPageSize, n)
	}
}

// Runs last: empties the table.
func TestQueue_DeleteAll(t *testing.T) {
	ctx := context.Background()
	h := queue.NewHandler(testStore, logger)

	err := h.HandleDeleteAll(ctx, events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: uuid.NewString(), Body: queue.CommandDeleteAll},
	}})
	if err != nil {
		t.Fatalf("HandleDeleteAll failed: %v", err)
	}

	remaining, err := testStore.Scan(0).Page(ctx)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty table, got %d posts", len(remaining))
	}
}

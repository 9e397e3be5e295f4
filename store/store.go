package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by the Store.
// *dynamodb.Client satisfies it.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store provides DynamoDB operations over the posts table.
type Store struct {
	client API
	config Config
}

// New creates a new Store instance.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// TableName returns the table the Store reads and writes.
func (s *Store) TableName() string {
	return s.config.TableName
}

// Scan returns a lazy collection over every post, fetched at most limit
// items per page. A limit <= 0 uses DefaultPageSize.
// No request is made until the collection is consumed.
func (s *Store) Scan(limit int32) Collection {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &scan{store: s, limit: limit}
}

// Find retrieves a post by id. It returns nil and no error when the post
// does not exist.
func (s *Store) Find(ctx context.Context, id string) (*Post, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       Post{ID: id}.GetKey(),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	var post Post
	if err := attributevalue.UnmarshalMap(result.Item, &post); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}
	return &post, nil
}

// Create persists a new post. The id must not already exist.
func (s *Store) Create(ctx context.Context, post Post) error {
	if post.ID == "" {
		return ErrMissingID
	}
	if post.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}

	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.config.TableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": AttrID},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a post by its key.
func (s *Store) Delete(ctx context.Context, post Post) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       post.GetKey(),
	})
	return err
}

// Collection is a lazily evaluated set of posts.
// Order is whatever DynamoDB returns; there is no sort guarantee.
type Collection interface {
	// Page fetches and returns only the first page.
	Page(ctx context.Context) ([]Post, error)

	// All iterates every post across all pages. Pages are fetched as the
	// iteration advances. An error is yielded once and ends the iteration.
	All(ctx context.Context) iter.Seq2[Post, error]
}

// scan is the Collection returned by Store.Scan.
type scan struct {
	store *Store
	limit int32
}

var _ Collection = (*scan)(nil)

func (c *scan) Page(ctx context.Context) ([]Post, error) {
	result, err := c.store.client.Scan(ctx, c.input())
	if err != nil {
		return nil, err
	}
	return unmarshalPosts(result.Items)
}

func (c *scan) All(ctx context.Context) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		paginator := dynamodb.NewScanPaginator(c.store.client, c.input())
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(Post{}, err)
				return
			}
			posts, err := unmarshalPosts(page.Items)
			if err != nil {
				yield(Post{}, err)
				return
			}
			for _, post := range posts {
				if !yield(post, nil) {
					return
				}
			}
		}
	}
}

func (c *scan) input() *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName: aws.String(c.store.config.TableName),
		Limit:     aws.Int32(c.limit),
	}
}

// unmarshalPosts converts raw scan items to posts, preserving order.
func unmarshalPosts(items []map[string]types.AttributeValue) ([]Post, error) {
	posts := make([]Post, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &posts); err != nil {
		return nil, fmt.Errorf("unmarshal posts: %w", err)
	}
	return posts, nil
}

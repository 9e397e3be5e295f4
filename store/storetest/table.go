// Package storetest provides an in-memory implementation of store.API for tests.
package storetest

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/postbox/store"
)

// Table is an in-memory posts table. Scan returns items in insertion order.
// It is not safe for concurrent use.
type Table struct {
	order []string
	items map[string]map[string]types.AttributeValue

	// GetErr, PutErr and ScanErr, when set, are returned by every call of
	// the matching operation.
	GetErr  error
	PutErr  error
	ScanErr error

	// DeleteErr is returned by DeleteItem once FailDeleteAfter deletes have
	// succeeded.
	DeleteErr       error
	FailDeleteAfter int

	// Deleted records the ids removed by DeleteItem, in call order.
	Deleted []string

	// ScanCalls counts Scan requests.
	ScanCalls int
}

var _ store.API = (*Table)(nil)

// New returns a Table seeded with posts.
func New(posts ...store.Post) *Table {
	t := &Table{items: make(map[string]map[string]types.AttributeValue)}
	for _, p := range posts {
		t.Put(p)
	}
	return t
}

// Put stores a post without any condition checks.
func (t *Table) Put(post store.Post) {
	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		panic(fmt.Sprintf("storetest: marshal post: %v", err))
	}
	t.put(post.ID, item)
}

// IDs returns the ids of stored posts in scan order.
func (t *Table) IDs() []string {
	ids := []string{}
	for _, id := range t.order {
		if _, ok := t.items[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of stored posts.
func (t *Table) Len() int {
	return len(t.items)
}

// GetItem implements store.API.
func (t *Table) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if t.GetErr != nil {
		return nil, t.GetErr
	}
	return &dynamodb.GetItemOutput{Item: t.items[keyOf(in.Key)]}, nil
}

// PutItem implements store.API. Any condition expression is treated as
// attribute_not_exists on the key.
func (t *Table) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if t.PutErr != nil {
		return nil, t.PutErr
	}
	id := keyOf(in.Item)
	if _, exists := t.items[id]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{
			Message: aws.String("The conditional request failed"),
		}
	}
	t.put(id, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem implements store.API.
func (t *Table) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if t.DeleteErr != nil && len(t.Deleted) >= t.FailDeleteAfter {
		return nil, t.DeleteErr
	}
	id := keyOf(in.Key)
	delete(t.items, id)
	t.Deleted = append(t.Deleted, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan implements store.API, honoring Limit and ExclusiveStartKey.
func (t *Table) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	t.ScanCalls++
	if t.ScanErr != nil {
		return nil, t.ScanErr
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		after := keyOf(in.ExclusiveStartKey)
		for i, id := range t.order {
			if id == after {
				start = i + 1
				break
			}
		}
	}

	limit := int(aws.ToInt32(in.Limit))
	out := &dynamodb.ScanOutput{}
	var last string
	for _, id := range t.order[start:] {
		item, ok := t.items[id]
		if !ok {
			continue
		}
		if limit > 0 && len(out.Items) == limit {
			out.LastEvaluatedKey = store.Post{ID: last}.GetKey()
			break
		}
		out.Items = append(out.Items, item)
		last = id
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (t *Table) put(id string, item map[string]types.AttributeValue) {
	if !t.inOrder(id) {
		t.order = append(t.order, id)
	}
	t.items[id] = item
}

func (t *Table) inOrder(id string) bool {
	for _, o := range t.order {
		if o == id {
			return true
		}
	}
	return false
}

func keyOf(item map[string]types.AttributeValue) string {
	if v, ok := item[store.AttrID].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

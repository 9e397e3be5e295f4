package store

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of the posts table.
const (
	AttrID        = "post_uuid"
	AttrTitle     = "title"
	AttrBody      = "body"
	AttrCreatedAt = "created_at"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// Post is a persisted blog post.
type Post struct {
	// ID is the hash key. Generated server-side and never reassigned.
	ID string `dynamodbav:"post_uuid"`

	Title string `dynamodbav:"title"`
	Body  string `dynamodbav:"body"`

	// CreatedAt is stored as epoch seconds.
	CreatedAt time.Time `dynamodbav:"created_at,unixtime"`
}

// GetKey returns the primary key for this post.
func (p Post) GetKey() PK {
	return PK{
		AttrID: &types.AttributeValueMemberS{Value: p.ID},
	}
}

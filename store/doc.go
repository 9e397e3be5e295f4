// Package store provides the DynamoDB data access layer for blog posts.
//
// All posts live in a single table keyed by post_uuid. The [Store] exposes
// exactly four operations:
//
//   - [Store.Scan] returns a lazy [Collection] over every post
//   - [Store.Find] looks a post up by id, returning nil when absent
//   - [Store.Create] persists a new post, refusing duplicate ids
//   - [Store.Delete] removes a post by key
//
// # Configuration
//
// Use [DefaultConfig] for local and test setups. Production deployments supply
// the table name from the environment:
//
//	cfg := store.DefaultConfig()
//	cfg.TableName = os.Getenv("TABLE_NAME")
//	s := store.New(dynamodb.NewFromConfig(awsCfg), cfg)
//
// # Errors
//
// Lookups never fail for a missing post; [Store.Find] returns nil. The package
// defines:
//
//   - [ErrAlreadyExists] - a post with the same id is already stored
//   - [ErrMissingID] - create called without an id
//   - [ErrMissingCreatedAt] - create called without a creation time
//
// Any other DynamoDB error (throttling, unavailable table) is returned as-is.
package store

package store

const (
	defaultTableName = "posts"

	// DefaultPageSize is the scan page size used when a caller passes no limit.
	DefaultPageSize int32 = 25
)

// Config holds configuration for the Store.
type Config struct {
	// TableName is the DynamoDB table holding posts.
	// Default: "posts"
	TableName string
}

// DefaultConfig returns defaults suitable for local and test tables.
func DefaultConfig() Config {
	return Config{
		TableName: defaultTableName,
	}
}

// validate fills in defaults for unset values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = defaultTableName
	}
}

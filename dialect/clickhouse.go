package dialect

import "strings"

// ClickHouse uses `?` markers through the database/sql driver.
type ClickHouse struct{}

// NewClickHouseDialect returns the ClickHouse dialect.
func NewClickHouseDialect() Dialect {
	return &ClickHouse{}
}

func (ClickHouse) Name() string {
	return "clickhouse"
}

func (ClickHouse) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (ClickHouse) Placeholder(int) string {
	return "?"
}

func (ClickHouse) RenderValue(v any) string {
	return renderCommon(v)
}

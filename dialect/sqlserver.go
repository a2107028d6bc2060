package dialect

import (
	"strconv"
	"strings"
)

type SQLServer struct{}

// NewSQLServerDialect returns the SQL Server dialect, with @pN markers.
func NewSQLServerDialect() Dialect {
	return &SQLServer{}
}

func (SQLServer) Name() string {
	return "sqlserver"
}

func (SQLServer) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (SQLServer) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}

func (SQLServer) RenderValue(v any) string {
	if s, ok := v.(string); ok {
		return "N" + quoteString(s)
	}
	return renderCommon(v)
}

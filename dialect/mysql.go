package dialect

import (
	"fmt"
	"strings"
)

// MySQL covers MySQL and wire-compatible servers such as TiDB.
type MySQL struct {
	name string
}

// NewMySQLDialect returns the MySQL dialect.
func NewMySQLDialect() Dialect {
	return &MySQL{name: "mysql"}
}

// NewTiDBDialect is the MySQL dialect reported as "tidb".
func NewTiDBDialect() Dialect {
	return &MySQL{name: "tidb"}
}

func (m *MySQL) Name() string {
	return m.name
}

func (m *MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m *MySQL) Placeholder(int) string {
	return "?"
}

// backslash is an escape character inside MySQL string literals
var mysqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

func (m *MySQL) RenderValue(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + mysqlEscaper.Replace(val) + "'"
	case []byte:
		return fmt.Sprintf("X'%x'", val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return renderCommon(v)
	}
}

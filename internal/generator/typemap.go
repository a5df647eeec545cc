package generator

import (
	"fmt"
	"strings"
)

// maxPGVarchar is the largest length PostgreSQL accepts for varchar/char.
const maxPGVarchar = 10485760

// MapType converts a source column type to its PostgreSQL equivalent.
// The boolean result is false when the source type is unrecognized and the
// conservative text fallback was used; callers surface that as a warning.
func MapType(sourceType string, maxLength, precision, scale int) (string, bool) {
	switch strings.ToLower(sourceType) {
	// Integer types
	case "bit":
		return "boolean", true
	case "tinyint", "smallint":
		return "smallint", true
	case "int":
		return "integer", true
	case "bigint":
		return "bigint", true

	// Decimal/numeric types
	case "decimal", "numeric":
		if precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", precision, scale), true
		}
		return "numeric", true
	case "money":
		return "numeric(19,4)", true
	case "smallmoney":
		return "numeric(10,4)", true

	// Floating point types
	case "float":
		return "double precision", true
	case "real":
		return "real", true

	// String types
	case "char", "nchar":
		if maxLength > 0 && maxLength <= maxPGVarchar {
			return fmt.Sprintf("char(%d)", maxLength), true
		}
		return "text", true
	case "varchar", "nvarchar":
		if maxLength == -1 { // varchar(max)
			return "text", true
		}
		if maxLength > 0 && maxLength <= maxPGVarchar {
			return fmt.Sprintf("varchar(%d)", maxLength), true
		}
		return "text", true
	case "text", "ntext":
		return "text", true

	// Binary types
	case "binary", "varbinary", "image":
		return "bytea", true

	// Date/time types
	case "date":
		return "date", true
	case "time":
		return "time", true
	case "datetime", "datetime2", "smalldatetime":
		return "timestamp", true
	case "datetimeoffset":
		return "timestamptz", true

	// GUID
	case "uniqueidentifier":
		return "uuid", true

	// XML
	case "xml":
		return "xml", true

	default:
		return "text", false
	}
}

// Package export persists the pickup rows in the formats the warehouse
// side accepts. The header layout is fixed by the pickup form, blank
// columns included.
package export

import (
	"fmt"

	"vivapickup/services/pickup"
)

// Headers is the fixed 13-column header row, written verbatim.
var Headers = [pickup.ColumnCount]string{
	"空A", "销售", "单号", "空D", "产品型号", "供货商", "数量",
	"顾客姓名", "电话", "家具自提", "留言", "货期", "订货",
}

// 数量 position within Headers
const quantityColumn = 6

const SheetName = "数据提取"

type Sink interface {
	Write(path string, rows []pickup.Row) error
}

// ForFormat picks a sink by file format name.
func ForFormat(format string) (Sink, string, error) {
	switch format {
	case "xlsx":
		return XLSX{}, ".xlsx", nil
	case "csv":
		return CSV{}, ".csv", nil
	}
	return nil, "", fmt.Errorf("unknown export format: %q", format)
}

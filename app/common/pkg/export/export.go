// Package export 将提交列表导出为 Excel 工作簿。
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// SheetName 工作表名称
const SheetName = "Submissions"

// Header 表头
var Header = []any{
	"ID", "Client", "Broker", "Premium", "Premium Value", "Appetite Score", "Appetite Status",
	"SLA", "Status", "Product", "Line of Business", "State", "Business Type", "Recommendation",
}

// WriteSubmissions 写出一行表头和每条提交一行
func WriteSubmissions(w io.Writer, items []*policy.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(2, 3, 28); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", Header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.ID, s.Client, s.Broker, s.Premium, s.PremiumValue, s.AppetiteScore, s.AppetiteStatus,
			s.SLATimer, s.Status, s.Product, s.LineOfBusiness, s.State, s.BusinessType, s.Recommendation,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

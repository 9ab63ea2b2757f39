package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"telegram-gateway-bot/internal/domain"
	"telegram-gateway-bot/internal/ports"
)

// SheetName — имя листа со списком пользователей.
const SheetName = "Users"

// ExcelExporter формирует книгу .xlsx со списком пользователей.
type ExcelExporter struct{}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter() ports.Exporter {
	return &ExcelExporter{}
}

// Export записывает книгу в w.
func (e *ExcelExporter) Export(w io.Writer, users []domain.User) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close excel file: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"User ID", "Username", "Имя и фамилия", "Дата регистрации"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, user := range users {
		row := i + 2
		username := ""
		if user.Username != "" {
			username = "@" + user.Username
		}
		values := []any{user.ID, username, fullName(user), user.JoinedAt.UTC().Format("2006-01-02 15:04:05")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

func fullName(u domain.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

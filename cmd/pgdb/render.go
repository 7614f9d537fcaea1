package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joacominatel/pgdb/internal/database"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func renderResult(res *database.Result) string {
	rows := make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		rec := make([]string, len(res.Columns))
		for j, col := range res.Columns {
			if v := row[col]; v != nil {
				rec[j] = fmt.Sprintf("%v", v)
			} else {
				rec[j] = "NULL"
			}
		}
		rows[i] = rec
	}
	out := renderTable(res.Columns, rows)
	return out + fmt.Sprintf("\n%d rows in %s", len(res.Rows), res.Duration)
}

func renderColumns(cols []database.Column) string {
	rows := make([][]string, len(cols))
	for i, c := range cols {
		nullable := "NO"
		if c.IsNullable {
			nullable = "YES"
		}
		pk := ""
		if c.IsPrimary {
			pk = "PK"
		}
		rows[i] = []string{c.Name, c.DataType, nullable, c.Default, pk}
	}
	return renderTable([]string{"Column", "Type", "Nullable", "Default", "Key"}, rows)
}

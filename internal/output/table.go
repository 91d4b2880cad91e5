package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{table: table, header: headers}
}

func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

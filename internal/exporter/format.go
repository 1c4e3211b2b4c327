package exporter

import (
	"time"

	"github.com/xuri/excelize/v2"

	"incidentcli/pkg/contracts/domain"
)

const borderColor = "000000"

// timeNumFmts are the number formats of written date and time cells.
var timeNumFmts = map[domain.TimeKind]string{
	domain.TimeOfDay:    "hh:mm",
	domain.CalendarDate: "dd/mm/yyyy",
	domain.DateTime:     "dd/mm/yyyy hh:mm",
}

// rowStyle is the cell style applied to every written report row: the
// configured font, centered and wrapped text and a thin border on each side.
func rowStyle(fontName string, fontSize float64) *excelize.Style {
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Color: borderColor, Style: 1})
	}

	return &excelize.Style{
		Font: &excelize.Font{
			Family: fontName,
			Size:   fontSize,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: borders,
	}
}

// timeStyle is rowStyle with a date or time number format.
func timeStyle(fontName string, fontSize float64, kind domain.TimeKind) *excelize.Style {
	style := rowStyle(fontName, fontSize)
	numFmt := timeNumFmts[kind]
	style.CustomNumFmt = &numFmt
	return style
}

// cellValue returns what is written for v. Dates are written as date cells;
// a time of day is written as its fraction of a day since it falls before
// the earliest date a cell can hold. Everything else is written as text.
func cellValue(v any) (any, domain.TimeKind, bool) {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return domain.CellText(v), 0, false
	}
	kind := domain.KindOf(t)
	if kind == domain.TimeOfDay {
		h, m, s := t.Clock()
		return float64(h*3600+m*60+s) / 86400, kind, true
	}
	return t, kind, true
}

// rowRange returns the first and last cell names of a row spanning columns
// 1..width.
func rowRange(row, width int) (string, string, error) {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return "", "", err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return "", "", err
	}
	return first, last, nil
}

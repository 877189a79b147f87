package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const calendarSheet = "Calendar"

var statusFill = map[models.ReservationStatus]string{
	models.StatusPending:    "#FFF2CC",
	models.StatusConfirmed:  "#DDEBF7",
	models.StatusCheckedIn:  "#E2EFDA",
	models.StatusCheckedOut: "#EDEDED",
}

// ExportCalendar writes the month as an XLSX grid: one row per room, one column
// per night, cells holding the guest name colored by reservation status.
func (q *QueryService) ExportCalendar(ctx context.Context, year, month int, w io.Writer) error {
	cal, err := q.GetCalendar(ctx, year, month)
	if err != nil {
		return err
	}
	rooms, err := q.store.ListRooms(ctx, models.RoomFilter{})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", calendarSheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}

	title := fmt.Sprintf("%s %d", time.Month(month), year)
	_ = f.SetCellValue(calendarSheet, "A1", title)
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	_ = f.SetCellStyle(calendarSheet, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#BDD7EE"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellValue(calendarSheet, "A2", "Room")
	_ = f.SetCellStyle(calendarSheet, "A2", "A2", headerStyle)
	for i, day := range cal.Days {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		_ = f.SetCellValue(calendarSheet, cell, day.Date.Time().Format("02.01"))
		_ = f.SetCellStyle(calendarSheet, cell, cell, headerStyle)
	}

	styles := make(map[models.ReservationStatus]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = id
	}

	rowOf := make(map[int64]int, len(rooms))
	for i, room := range rooms {
		row := i + 3
		rowOf[room.ID] = row
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(calendarSheet, cell, fmt.Sprintf("%s (%s)", room.Number, room.Type))
	}

	for col, day := range cal.Days {
		for _, entry := range day.Reservations {
			row, ok := rowOf[entry.RoomID]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row)
			_ = f.SetCellValue(calendarSheet, cell, entry.CustomerName)
			if style, ok := styles[entry.Status]; ok {
				_ = f.SetCellStyle(calendarSheet, cell, cell, style)
			}
		}
	}

	_ = f.SetColWidth(calendarSheet, "A", "A", 18)
	if len(cal.Days) > 0 {
		last, _ := excelize.ColumnNumberToName(len(cal.Days) + 1)
		_ = f.SetColWidth(calendarSheet, "B", last, 14)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	q.logger.Info().Int("year", year).Int("month", month).Int("rooms", len(rooms)).Msg("calendar exported")
	return nil
}

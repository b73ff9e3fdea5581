// Package export renders a generated month as a CSV table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// Header is the column layout of an exported month
var Header = []string{
	"Date", "Day", "AM", "PM",
	"AM Reserve 1", "AM Reserve 2",
	"PM Reserve 1", "PM Reserve 2",
}

// ContentType of WriteCSV output
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes one row per day, dates as d/M/yyyy, blank cells for unfilled slots
func WriteCSV(w io.Writer, month models.ScheduleMonth) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, day := range month {
		date := day.Date
		if t, err := time.Parse(calendar.ISODate, day.Date); err == nil {
			date = t.Format("2/1/2006")
		}
		row := []string{date, day.Weekday}
		for _, kind := range models.SlotOrder {
			row = append(row, day.Slot(kind))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FileName is the download name of an exported month, e.g. PlannedSchedule_Aug-2025.csv
func FileName(month calendar.Month) string {
	return fmt.Sprintf("PlannedSchedule_%s.csv", month.Label())
}

// Package roster reads the points ledger, a "Name,Points" CSV with a header row.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParsePoints reads ledger rows in file order. The first row is treated as a
// header unless its points column is already a number.
func ParsePoints(r io.Reader) ([]models.RosterEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []models.RosterEntry
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: points ledger: %v", models.ErrInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if len(record) < 2 || !isNumber(record[1]) {
				continue
			}
		}
		if isBlank(record) {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected name,points", models.ErrInvalidInput, line)
		}

		points, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil || math.IsNaN(points) || math.IsInf(points, 0) {
			return nil, fmt.Errorf("%w: line %d: points %q is not a number", models.ErrInvalidInput, line, record[1])
		}

		entry := models.RosterEntry{
			Name:   strings.TrimSpace(record[0]),
			Points: points,
		}
		if err := validate.Struct(entry); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return nil, fmt.Errorf("%w: line %d: %s failed %q", models.ErrInvalidInput, line, verrs[0].Field(), verrs[0].Tag())
			}
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrInvalidInput, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

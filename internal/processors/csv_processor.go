package processors

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// ParseContactsCSV reads an audience import with the header email,name,tags
// in any column order. Tags are separated by semicolons. Only the email
// column is required and blank lines are skipped.
func ParseContactsCSV(content []byte) ([]types.ListContact, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV file is empty", types.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", types.ErrValidation, err)
	}

	cols := map[string]int{}
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	emailCol, ok := cols["email"]
	if !ok {
		return nil, fmt.Errorf("%w: CSV header must contain an email column", types.ErrValidation)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var contacts []types.ListContact
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", types.ErrValidation, line, err)
		}
		if emailCol >= len(row) || strings.TrimSpace(row[emailCol]) == "" {
			continue
		}

		email := types.NormalizeEmail(row[emailCol])
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: line %d: invalid email %q", types.ErrValidation, line, row[emailCol])
		}

		contact := types.ListContact{Email: email, Name: field(row, "name")}
		for _, tag := range strings.Split(field(row, "tags"), ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				contact.Tags = append(contact.Tags, tag)
			}
		}
		contacts = append(contacts, contact)
	}

	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: CSV file has no data rows", types.ErrValidation)
	}

	utils.Zlog.Info("Parsed contacts CSV", zap.Int("rows", len(contacts)))
	return contacts, nil
}

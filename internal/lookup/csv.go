package lookup

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inviterbot/internal/models"
)

// ReadPhoneNumbers extracts phone numbers from CSV data: one number per
// row in the first column, leading/trailing whitespace trimmed, blank
// rows skipped. Any other columns are ignored.
func ReadPhoneNumbers(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may carry extra columns
	reader.TrimLeadingSpace = true

	var phoneNumbers []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		phone := strings.TrimSpace(row[0])
		if phone == "" {
			continue
		}
		phoneNumbers = append(phoneNumbers, phone)
	}
	return phoneNumbers, nil
}

// WriteResults renders lookup results as a CSV document with a header
// row. The user ID column is left blank for unregistered numbers.
func WriteResults(results []models.PhoneLookupResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Phone Number", "Registered on Telegram", "Telegram User ID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		userID := ""
		if result.IsRegistered && result.UserID != 0 {
			userID = strconv.FormatInt(result.UserID, 10)
		}
		row := []string{
			result.PhoneNumber,
			strconv.FormatBool(result.IsRegistered),
			userID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

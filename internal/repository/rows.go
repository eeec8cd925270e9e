package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// decodeRowArray decodes a JSON array of objects keeping numbers as json.Number.
func decodeRowArray(raw []byte) ([]models.Row, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.Row{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var rows []models.Row
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	out := rows[:0]
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

package database

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/cyberrange/internal/classify"
)

// LoadSignatures fetches the detection rule set from the signatures table.
// The coordinator falls back to the built-in defaults when the table is empty
// or the database is unavailable.
func LoadSignatures(ctx context.Context) ([]classify.Signature, error) {
	rows, err := DB.Query(ctx, `
		SELECT pattern, description, category, regex
		FROM signatures
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	var sigs []classify.Signature
	for rows.Next() {
		var s classify.Signature
		if err := rows.Scan(&s.Pattern, &s.Description, &s.Category, &s.Regex); err != nil {
			return nil, fmt.Errorf("failed to scan signature row: %w", err)
		}
		sigs = append(sigs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("signature row iteration error: %w", err)
	}
	return sigs, nil
}

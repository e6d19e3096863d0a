// Package flashcard stores and serves user vocabulary cards.
package flashcard

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExampleList is the canonical example-sentence list, stored as a JSON array
// column.
type ExampleList []string

// Value implements driver.Valuer.
func (l ExampleList) Value() (driver.Value, error) {
	if l == nil {
		l = ExampleList{}
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	return encoded, nil
}

// Scan implements sql.Scanner. NULL scans as an empty list.
func (l *ExampleList) Scan(src any) error {
	if src == nil {
		*l = ExampleList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ExampleList", src)
	}

	if len(data) == 0 {
		*l = ExampleList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("json.Unmarshal > %w", err)
	}
	if *l == nil {
		*l = ExampleList{}
	}
	return nil
}

// Flashcard is one vocabulary card. Example is the deprecated singular field
// kept for rows written before examples became a list; reads migrate it via
// NormalizeExamples.
type Flashcard struct {
	ID               int64       `db:"id" json:"id"`
	UserID           string      `db:"user_id" json:"userId"`
	CategoryID       *int64      `db:"category_id" json:"categoryId"`
	Text             string      `db:"text" json:"text"`
	Transcription    string      `db:"transcription" json:"transcription"`
	Translation      string      `db:"translation" json:"translation"`
	ShortDescription string      `db:"short_description" json:"shortDescription"`
	Explanation      string      `db:"explanation" json:"explanation"`
	Examples         ExampleList `db:"examples" json:"examples"`
	Example          string      `db:"example" json:"example"`
	Notes            string      `db:"notes" json:"notes"`
	IsAIGenerated    bool        `db:"is_ai_generated" json:"isAIGenerated"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updatedAt"`
}

// NormalizeExamples migrates the legacy singular example on read: when the
// list is empty and the old field is set, the list becomes a one-element
// list. The stored row is not rewritten.
func (f *Flashcard) NormalizeExamples() {
	if len(f.Examples) == 0 && strings.TrimSpace(f.Example) != "" {
		f.Examples = ExampleList{strings.TrimSpace(f.Example)}
	}
	if f.Examples == nil {
		f.Examples = ExampleList{}
	}
}

// ProcessExamples merges the list and legacy-singular inputs a client may
// send: a non-empty list wins, otherwise the singular fills in. Entries are
// trimmed and blanks dropped.
func ProcessExamples(examples []string, legacySingular string) ExampleList {
	processed := make(ExampleList, 0, len(examples))
	for _, example := range examples {
		example = strings.TrimSpace(example)
		if example == "" {
			continue
		}
		processed = append(processed, example)
	}
	if len(processed) == 0 {
		if single := strings.TrimSpace(legacySingular); single != "" {
			processed = append(processed, single)
		}
	}
	return processed
}

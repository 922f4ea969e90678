package persist

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrMalformed marks a stored document that cannot be turned back into a list.
var ErrMalformed = errors.New("malformed todo list")

//go:embed schema.json
var schemaJSON string

var listSchema = jsonschema.MustCompileString("todos.schema.json", schemaJSON)

// Record is the stored shape of one item. Times are epoch milliseconds.
type Record struct {
	ID         string `json:"id" yaml:"id"`
	Value      string `json:"value" yaml:"value"`
	Done       bool   `json:"done" yaml:"done"`
	StartTime  *int64 `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	FinishTime *int64 `json:"finish_time,omitempty" yaml:"finish_time,omitempty"`
}

// decodeRecord also accepts the camelCase field names older documents used.
type decodeRecord struct {
	ID          string   `json:"id"`
	Value       *string  `json:"value"`
	Text        *string  `json:"text"`
	Done        bool     `json:"done"`
	StartTime   *float64 `json:"start_time"`
	CreatedAt   *float64 `json:"createdAt"`
	FinishTime  *float64 `json:"finish_time"`
	CompletedAt *float64 `json:"completedAt"`
}

// Records converts l to its stored form, preserving order.
func Records(l model.List) []Record {
	out := make([]Record, 0, len(l))
	for _, it := range l {
		out = append(out, Record{
			ID:         it.ID,
			Value:      it.Text,
			Done:       it.Done,
			StartTime:  millis(it.CreatedAt),
			FinishTime: millis(it.CompletedAt),
		})
	}
	return out
}

// Encode serializes l.
func Encode(l model.List) ([]byte, error) {
	b, err := json.Marshal(Records(l))
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses and validates a stored document. Every failure wraps ErrMalformed.
func Decode(b []byte) (model.List, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %w", ErrMalformed, err)
	}
	if err := listSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var recs []decodeRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %w", ErrMalformed, err)
	}

	l := make(model.List, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, r.ID)
		}
		seen[r.ID] = struct{}{}

		it := model.Item{
			ID:          r.ID,
			Done:        r.Done,
			CreatedAt:   fromMillis(first(r.StartTime, r.CreatedAt)),
			CompletedAt: fromMillis(first(r.FinishTime, r.CompletedAt)),
		}
		switch {
		case r.Value != nil:
			it.Text = *r.Value
		case r.Text != nil:
			it.Text = *r.Text
		}
		l = append(l, it)
	}
	return l, nil
}

func millis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func first(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// fromMillis treats only a missing or null time as unset; 0 is the epoch.
func fromMillis(f *float64) time.Time {
	if f == nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(*f)).UTC()
}

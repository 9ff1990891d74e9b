package snapshot

import (
	"encoding/json"
	"errors"
	"unicode"
	"unicode/utf8"

	validator "github.com/go-playground/validator/v10"
)

// SchemaVersion is the version written by Encode and accepted by Decode.
const SchemaVersion = 1

// ErrVersion is returned by Decode for payloads written under another schema.
var ErrVersion = errors.New("snapshot: unsupported schema version")

// Record is the persisted state of one cart line.
type Record struct {
	ProductIDName string `json:"productIDName" validate:"required"`
	CurrentQty    int    `json:"currentQty" validate:"gte=1"`
	CurrentPrice  string `json:"currentPrice" validate:"required,price"`
	SelectorID    string `json:"selectorID" validate:"required"`
}

// Snapshot is the envelope stored in the cache.
type Snapshot struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || unicode.IsDigit(r) || size == len(s) {
			return false
		}
		next, _ := utf8.DecodeRuneInString(s[size:])
		return unicode.IsDigit(next) || next == '.'
	})
	return v
}

// Validate reports whether r has every field a restore needs.
func (r Record) Validate() error {
	return validate.Struct(r)
}

// Encode serialises records under the current schema version.
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(Snapshot{Version: SchemaVersion, Records: records})
}

// Decode parses a stored snapshot and keeps only complete records.
// discarded counts the records dropped by validation.
func Decode(data []byte) (records []Record, discarded int, err error) {
	if len(data) == 0 {
		return nil, 0, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, 0, err
	}
	if snap.Version != SchemaVersion {
		return nil, 0, ErrVersion
	}
	records = make([]Record, 0, len(snap.Records))
	for _, rec := range snap.Records {
		if rec.Validate() != nil {
			discarded++
			continue
		}
		records = append(records, rec)
	}
	return records, discarded, nil
}

// IndexBySelector returns the index of the record with selectorID, or -1.
func IndexBySelector(records []Record, selectorID string) int {
	for i, rec := range records {
		if rec.SelectorID == selectorID {
			return i
		}
	}
	return -1
}

package extractor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed record.schema.json
var recordSchemaJSON string

var recordSchema = jsonschema.MustCompileString("record.schema.json", recordSchemaJSON)

// RecordSchema returns the JSON Schema every NDJSON line must satisfy.
func RecordSchema() string {
	return recordSchemaJSON
}

// CheckRecord validates one raw NDJSON line against the record schema.
func CheckRecord(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("record schema: %w", err)
	}
	return nil
}

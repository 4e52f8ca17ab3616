package submissions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

// StatusUpdate is a reviewer's request to set a submission's status.
type StatusUpdate struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

var invalidStatusMessage = "Invalid status. Must be " + constants.StatusList()

func statusUpdateSchema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": constants.Statuses(),
			},
			"notes": map[string]any{
				"type": []string{"string", "null"},
			},
		},
		"required": []string{"status"},
	}
}

var compiledStatusSchema = mustCompileSchema(statusUpdateSchema())

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("status_update.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	return compiler.MustCompile("status_update.json")
}

// DecodeStatusUpdate validates a JSON status update body and decodes it.
func DecodeStatusUpdate(raw []byte) (StatusUpdate, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return StatusUpdate{}, common.NewAppError(common.CodeValidation, "Invalid request body", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	if err := compiledStatusSchema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) && onlyNotesFailed(verr) {
			return StatusUpdate{}, common.NewValidationError("Invalid notes. Must be a string or null")
		}
		return StatusUpdate{}, common.NewValidationError(invalidStatusMessage)
	}

	var upd StatusUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		return StatusUpdate{}, common.NewAppError(common.CodeValidation, "Invalid request body", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	return upd, nil
}

func onlyNotesFailed(verr *jsonschema.ValidationError) bool {
	leaves := leafLocations(verr, nil)
	if len(leaves) == 0 {
		return false
	}
	for _, loc := range leaves {
		if loc != "/notes" {
			return false
		}
	}
	return true
}

func leafLocations(verr *jsonschema.ValidationError, acc []string) []string {
	if len(verr.Causes) == 0 {
		return append(acc, verr.InstanceLocation)
	}
	for _, c := range verr.Causes {
		acc = leafLocations(c, acc)
	}
	return acc
}

package extraction

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaRef names one of the structured-record schemas the extractor can
// target.
type SchemaRef string

// Supported extraction schemas.
const (
	SchemaCandidate   SchemaRef = "candidate_record"
	SchemaRequisition SchemaRef = "requisition"
)

// PromptSchema defines the structure for LLM-based content extraction: a
// task description plus the expected output fields.
type PromptSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema PromptSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// CandidateSchema returns the extraction schema for candidate documents.
func CandidateSchema() PromptSchema {
	return PromptSchema{
		Name: string(SchemaCandidate),
		Description: `You are an expert resume parser. Extract the candidate's identity and
qualifications from the document below. COPY skill names as written; do not
invent skills the text does not mention.`,
		Fields: []SchemaField{
			{Name: "given_name", Type: "\"string\"", Description: "Candidate first name", Required: true},
			{Name: "family_name", Type: "\"string\"", Description: "Candidate last name", Required: true},
			{Name: "skills", Type: "[\"string\"]", Description: "Technical skills mentioned in the document", Required: true},
			{Name: "experience_level", Type: "\"string\"", Description: "One of: junior, intermediate, senior, lead", Required: true},
			{Name: "location", Type: "\"string\"", Description: "Candidate location if stated", Required: false},
		},
	}
}

// RequisitionSchema returns the extraction schema for job requisitions.
func RequisitionSchema() PromptSchema {
	return PromptSchema{
		Name: string(SchemaRequisition),
		Description: `You are an expert job posting parser. Extract the role identity and
requirements from the posting below. COPY TEXT VERBATIM where possible.
EXCLUDE application form fields, EEO statements, and legal disclaimers.`,
		Fields: []SchemaField{
			{Name: "id", Type: "\"string\"", Description: "Job ID or requisition number if stated", Required: false},
			{Name: "title", Type: "\"string\"", Description: "Role title", Required: true},
			{Name: "required_skills", Type: "[\"string\"]", Description: "Required technical skills", Required: true},
			{Name: "desired_experience_level", Type: "\"string\"", Description: "One of: junior, intermediate, senior, lead", Required: true},
			{Name: "location", Type: "\"string\"", Description: "Role location, or 'remote'", Required: false},
		},
	}
}

// candidateJSONSchema validates extraction output for candidate records
// before it is accepted into the pipeline.
const candidateJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["given_name", "family_name", "skills"],
  "properties": {
    "given_name": {"type": "string"},
    "family_name": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "experience_level": {"type": "string"},
    "location": {"type": "string"}
  }
}`

// requisitionJSONSchema validates extraction output for requisitions.
const requisitionJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "required_skills"],
  "properties": {
    "id": {"type": "string"},
    "title": {"type": "string", "minLength": 1},
    "required_skills": {"type": "array", "items": {"type": "string"}},
    "desired_experience_level": {"type": "string"},
    "location": {"type": "string"}
  }
}`

// jsonSchemaFor returns the JSON Schema source for a schema ref.
func jsonSchemaFor(ref SchemaRef) (string, error) {
	switch ref {
	case SchemaCandidate:
		return candidateJSONSchema, nil
	case SchemaRequisition:
		return requisitionJSONSchema, nil
	default:
		return "", fmt.Errorf("unknown extraction schema: %s", ref)
	}
}

// ValidateAgainstSchema checks JSON content against the schema for ref and
// returns a *SchemaViolationError listing every violation.
func ValidateAgainstSchema(ref SchemaRef, jsonContent string) error {
	schemaSource, err := jsonSchemaFor(ref)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaSource),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &Error{Schema: ref, Message: "schema validation failed during load", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	violation := &SchemaViolationError{Schema: ref}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violation.Fields = append(violation.Fields, FieldError{Field: field, Message: desc.Description()})
	}
	return violation
}

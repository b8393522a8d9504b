package template

const targetSchemaID = "https://bpmnport.dev/schemas/template.json"

// targetSchemaJSON is the JSON Schema for the emitted template document.
// Embedded as a constant to avoid filesystem dependencies.
const targetSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://bpmnport.dev/schemas/template.json",
  "type": "object",
  "required": ["id", "title", "steps", "rules"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "title": { "type": "string", "minLength": 1 },
    "summary": { "type": "string" },
    "tags": {
      "type": "array",
      "items": { "type": "string" }
    },
    "is_public": { "type": "boolean" },
    "guest_enabled": { "type": "boolean" },
    "auto_archive_days": { "type": "integer", "minimum": 0 },
    "steps": {
      "type": "array",
      "items": { "$ref": "#/$defs/step" }
    },
    "rules": {
      "type": "array",
      "items": { "$ref": "#/$defs/rule" }
    },
    "warnings": {
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "step": {
      "type": "object",
      "required": ["title", "step_type", "position", "source_ref"],
      "properties": {
        "title": { "type": "string", "minLength": 1 },
        "step_type": {
          "type": "string",
          "enum": ["task", "decision", "group", "placeholder"]
        },
        "position": { "type": "integer", "minimum": 1 },
        "description": { "type": "string" },
        "source_ref": { "type": "string", "minLength": 1 },
        "requires_review": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "rule": {
      "type": "object",
      "required": ["step_ref", "target_ref"],
      "properties": {
        "step_ref": { "type": "string", "minLength": 1 },
        "field": { "type": "string" },
        "operator": {
          "type": "string",
          "enum": ["==", "!=", ">", ">=", "<", "<="]
        },
        "value": { "type": "string" },
        "target_ref": { "type": "string", "minLength": 1 },
        "requires_review": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  }
}`

package registry

import "github.com/plumehq/plume/pkg/models"

// identifierPattern mirrors the grammar enforced by pkg/identifier; block
// labels appear inside template expressions, so they share the rule set.
const identifierPattern = `^[A-Za-z_][A-Za-z0-9_]*$`

const baseProperties = `
		"id": { "type": "string", "minLength": 1 },
		"block_type": { "type": "string" },
		"label": { "type": "string", "pattern": "` + identifierPattern + `" },
		"continue_on_failure": { "type": "boolean" }`

const keyListProperty = `
		"parameter_keys": {
			"type": ["array", "null"],
			"items": { "type": "string", "pattern": "` + identifierPattern + `" }
		}`

func builtinSchemas() map[models.BlockType]string {
	return map[models.BlockType]string{
		models.BlockTypeTask: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"url": { "type": "string" },
				"navigation_goal": { "type": "string" },
				"data_extraction_goal": { "type": "string" }
			}
		}`,
		models.BlockTypeNavigation: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"url": { "type": "string" },
				"navigation_goal": { "type": "string" }
			}
		}`,
		models.BlockTypeAction: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"url": { "type": "string" },
				"instruction": { "type": "string" }
			}
		}`,
		models.BlockTypeValidation: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"complete_criterion": { "type": "string" },
				"terminate_criterion": { "type": "string" }
			}
		}`,
		models.BlockTypeHTTPRequest: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"method": { "type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", ""] },
				"url": { "type": "string" },
				"body": { "type": "string" },
				"header": { "type": "object", "additionalProperties": { "type": "string" } }
			}
		}`,
		models.BlockTypeCode: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,` + keyListProperty + `,
				"code": { "type": "string" }
			}
		}`,
		models.BlockTypeFileParser: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,
				"file_url": { "type": "string" }
			}
		}`,
		models.BlockTypeUpload: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,
				"path": { "type": "string" }
			}
		}`,
		models.BlockTypeSendEmail: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,
				"recipients": { "type": "string" },
				"subject": { "type": "string" },
				"body": { "type": "string" }
			}
		}`,
		models.BlockTypeHumanInteraction: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,
				"instructions": { "type": "string" }
			}
		}`,
		models.BlockTypeLoop: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `,
				"loop_value": { "type": "string" }
			}
		}`,
		models.BlockTypePrintPage: `{
			"type": "object",
			"required": ["id", "block_type", "label"],
			"properties": {` + baseProperties + `
			}
		}`,
	}
}

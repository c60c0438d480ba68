package models

import (
	"encoding/json"
	"fmt"
)

// UnknownBlockTypeError is returned when a block document carries a type tag
// that no variant implements.
type UnknownBlockTypeError struct {
	BlockType BlockType
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("unknown block type %q", e.BlockType)
}

// blockEnvelope peeks at the type tag before the variant decode.
type blockEnvelope struct {
	BlockType BlockType `json:"block_type"`
}

// DecodeBlock unmarshals one block document into its typed variant.
func DecodeBlock(data []byte) (Block, error) {
	var envelope blockEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to read block type tag: %w", err)
	}

	var block Block

	switch envelope.BlockType {
	case BlockTypeTask:
		block = &TaskBlock{}
	case BlockTypeNavigation:
		block = &NavigationBlock{}
	case BlockTypeAction:
		block = &ActionBlock{}
	case BlockTypeValidation:
		block = &ValidationBlock{}
	case BlockTypeHTTPRequest:
		block = &HTTPRequestBlock{}
	case BlockTypeFileParser:
		block = &FileParserBlock{}
	case BlockTypeUpload:
		block = &UploadBlock{}
	case BlockTypeSendEmail:
		block = &SendEmailBlock{}
	case BlockTypeHumanInteraction:
		block = &HumanInteractionBlock{}
	case BlockTypeLoop:
		block = &LoopBlock{}
	case BlockTypeCode:
		block = &CodeBlock{}
	case BlockTypePrintPage:
		block = &PrintPageBlock{}
	default:
		return nil, &UnknownBlockTypeError{BlockType: envelope.BlockType}
	}

	if err := json.Unmarshal(data, block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s block: %w", envelope.BlockType, err)
	}

	return block, nil
}

// BlockList is an ordered block collection that decodes each entry into its
// typed variant. Marshalling needs no special handling: every variant carries
// its type tag in BlockBase.
type BlockList []Block

func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	blocks := make([]Block, 0, len(raw))

	for _, doc := range raw {
		block, err := DecodeBlock(doc)
		if err != nil {
			return err
		}

		blocks = append(blocks, block)
	}

	*l = blocks

	return nil
}

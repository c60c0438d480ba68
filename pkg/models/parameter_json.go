package models

import (
	"encoding/json"
	"fmt"
)

// UnknownParameterTypeError is returned when a parameter document carries a
// type tag that no variant implements.
type UnknownParameterTypeError struct {
	ParameterType ParameterType
}

func (e *UnknownParameterTypeError) Error() string {
	return fmt.Sprintf("unknown parameter type %q", e.ParameterType)
}

type parameterEnvelope struct {
	ParameterType ParameterType `json:"parameter_type"`
}

// DecodeParameter unmarshals one parameter document into its typed variant.
func DecodeParameter(data []byte) (Parameter, error) {
	var envelope parameterEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to read parameter type tag: %w", err)
	}

	var parameter Parameter

	switch envelope.ParameterType {
	case ParameterTypeWorkflowInput:
		parameter = &WorkflowInputParameter{}
	case ParameterTypeCredential:
		parameter = &CredentialParameter{}
	case ParameterTypeContext:
		parameter = &ContextParameter{}
	case ParameterTypeSecret:
		parameter = &SecretParameter{}
	case ParameterTypeCreditCardData:
		parameter = &CreditCardDataParameter{}
	default:
		return nil, &UnknownParameterTypeError{ParameterType: envelope.ParameterType}
	}

	if err := json.Unmarshal(data, parameter); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s parameter: %w", envelope.ParameterType, err)
	}

	return parameter, nil
}

// ParameterList is an ordered parameter collection that decodes each entry
// into its typed variant.
type ParameterList []Parameter

func (l *ParameterList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parameters := make([]Parameter, 0, len(raw))

	for _, doc := range raw {
		parameter, err := DecodeParameter(doc)
		if err != nil {
			return err
		}

		parameters = append(parameters, parameter)
	}

	*l = parameters

	return nil
}

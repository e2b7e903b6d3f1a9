package cart

import (
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Envelope is the wire form of an action: a type tag plus its payload. The
// payload is a product for add and a bare product id for the quantity
// actions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeAction serializes an action into its envelope JSON.
func EncodeAction(action Action) ([]byte, error) {
	var payload any
	switch a := action.(type) {
	case AddToCart:
		payload = a.Product
	case IncrementQuantity:
		payload = a.ID
	case DecrementQuantity:
		payload = a.ID
	default:
		return nil, fmt.Errorf("encode action: unsupported action %T", action)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", action.Type(), err)
	}

	return json.Marshal(Envelope{Type: action.Type(), Payload: raw})
}

// DecodeAction parses envelope JSON into an action. Malformed input, unknown
// types and non-positive product ids are reported as invalid input.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.InvalidInput("invalid action envelope: " + err.Error())
	}
	return env.Action()
}

// Action converts the envelope into its typed action.
func (e Envelope) Action() (Action, error) {
	if len(e.Payload) == 0 {
		return nil, apperrors.InvalidInput("action payload is required")
	}

	switch e.Type {
	case TypeAddToCart:
		var p domain.Product
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, apperrors.InvalidInput("invalid product payload: " + err.Error())
		}
		if p.ID <= 0 {
			return nil, apperrors.InvalidInput("product id must be positive")
		}
		return AddToCart{Product: p}, nil
	case TypeIncrementQuantity:
		id, err := decodeID(e.Payload)
		if err != nil {
			return nil, err
		}
		return IncrementQuantity{ID: id}, nil
	case TypeDecrementQuantity:
		id, err := decodeID(e.Payload)
		if err != nil {
			return nil, err
		}
		return DecrementQuantity{ID: id}, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown action type %q", e.Type))
	}
}

func decodeID(raw json.RawMessage) (int, error) {
	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, apperrors.InvalidInput("invalid product id payload: " + err.Error())
	}
	if id <= 0 {
		return 0, apperrors.InvalidInput("product id must be positive")
	}
	return id, nil
}

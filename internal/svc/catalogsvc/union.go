package catalogsvc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// errMissingField is returned when the data object lacks the requested operation.
var errMissingField = errors.New("missing field in response data")

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

type typenameHeader struct {
	Typename string `json:"__typename"`
}

// decodeUnion reads a Variant | Error union. Anything other than the two
// named members, including null, is a transport failure.
func decodeUnion[T any](p json.RawMessage, variant string) (domain.Result[T], error) {
	if isNull(p) {
		return domain.Result[T]{}, fmt.Errorf("%w: null", domain.ErrUnexpectedTypename)
	}

	var head typenameHeader
	if err := json.Unmarshal(p, &head); err != nil {
		return domain.Result[T]{}, fmt.Errorf("decode __typename: %w", err)
	}

	switch head.Typename {
	case variant:
		var value T
		if err := json.Unmarshal(p, &value); err != nil {
			return domain.Result[T]{}, fmt.Errorf("decode %s: %w", variant, err)
		}

		return domain.Success(value), nil
	case TypenameError:
		var detail domain.ErrorDetail
		if err := json.Unmarshal(p, &detail); err != nil {
			return domain.Result[T]{}, fmt.Errorf("decode %s: %w", TypenameError, err)
		}

		return domain.Failure[T](detail), nil
	default:
		return domain.Result[T]{}, fmt.Errorf("%w: %q", domain.ErrUnexpectedTypename, head.Typename)
	}
}

// decodeList reads a plain list field. A successful response always carries a list.
func decodeList[T any](p json.RawMessage) (domain.Result[[]T], error) {
	if isNull(p) {
		return domain.Result[[]T]{}, fmt.Errorf("%w: null list", errMissingField)
	}

	var values []T
	if err := json.Unmarshal(p, &values); err != nil {
		return domain.Result[[]T]{}, fmt.Errorf("decode list: %w", err)
	}

	if values == nil {
		values = []T{}
	}

	return domain.Success(values), nil
}

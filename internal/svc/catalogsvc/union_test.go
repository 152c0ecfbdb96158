package catalogsvc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
)

func TestDecodeUnion(t *testing.T) {
	t.Parallel()

	res, err := decodeUnion[domain.Order](json.RawMessage(`{"__typename":"Order","id":"o1","status":"PENDING","quantity":2,"total":"20.50"}`), TypenameOrder)
	require.NoError(t, err)

	order, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, "20.5", order.Total.String())

	res, err = decodeUnion[domain.Order](json.RawMessage(`{"__typename":"Error","statusCode":409,"cause":"INVALID_TRANSITION","message":"Order is already RECEIVED","context":null}`), TypenameOrder)
	require.NoError(t, err)

	detail, ok := res.Detail()
	require.True(t, ok)
	assert.Equal(t, 409, detail.StatusCode)

	_, err = decodeUnion[domain.Order](json.RawMessage(`{"__typename":"Product","id":"p1"}`), TypenameOrder)
	require.ErrorIs(t, err, domain.ErrUnexpectedTypename)

	_, err = decodeUnion[domain.Order](json.RawMessage(`{"id":"o1"}`), TypenameOrder)
	require.ErrorIs(t, err, domain.ErrUnexpectedTypename)

	_, err = decodeUnion[domain.Order](json.RawMessage(` null `), TypenameOrder)
	require.ErrorIs(t, err, domain.ErrUnexpectedTypename)

	_, err = decodeUnion[domain.Order](json.RawMessage(`{"__typename":"Order","quantity":"many"}`), TypenameOrder)
	require.Error(t, err)
}

func TestDecodeList(t *testing.T) {
	t.Parallel()

	res, err := decodeList[domain.Product](json.RawMessage(`[]`))
	require.NoError(t, err)

	products, ok := res.Value()
	require.True(t, ok)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	_, err = decodeList[domain.Product](json.RawMessage(`null`))
	require.ErrorIs(t, err, errMissingField)

	_, err = decodeList[domain.Product](json.RawMessage(`{"id":"p1"}`))
	require.Error(t, err)
}

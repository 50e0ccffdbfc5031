package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrder_FullPayload(t *testing.T) {
	payload := []byte(`{
		"id": 42,
		"originNodeId": 3,
		"targetNodeId": 9,
		"load": 2,
		"value": 150,
		"deliveryDateUtc": "2024-06-01T10:00:00Z",
		"expirationDateUtc": "2024-06-01T12:00:00Z"
	}`)
	order, err := DecodeOrder(payload)
	require.NoError(t, err)
	assert.Equal(t, 42, order.ID)
	assert.Equal(t, 3, order.OriginNodeID)
	assert.Equal(t, 9, order.TargetNodeID)
	assert.Equal(t, 2, order.Load)
	assert.Equal(t, 150, order.Value)
	assert.Equal(t, "2024-06-01T10:00:00Z", order.DeliveryDateUTC)
	assert.Equal(t, "2024-06-01T12:00:00Z", order.ExpirationDateUTC)
}

func TestDecodeOrder_MissingFieldsDefaultToZero(t *testing.T) {
	order, err := DecodeOrder([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Order{}, order)
}

func TestDecodeOrder_WrongTypesDegradeToZero(t *testing.T) {
	payload := []byte(`{"id": "not-a-number", "value": 80, "deliveryDateUtc": 12345}`)
	order, err := DecodeOrder(payload)
	require.NoError(t, err)
	assert.Equal(t, 0, order.ID)
	assert.Equal(t, 80, order.Value)
	assert.Equal(t, "", order.DeliveryDateUTC)
}

func TestDecodeOrder_MalformedPayloadErrors(t *testing.T) {
	_, err := DecodeOrder([]byte(`not json at all`))
	assert.Error(t, err)
	_, err = DecodeOrder([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

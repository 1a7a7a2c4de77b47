package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionUnmarshalNumericID(t *testing.T) {
	var o Option
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"X","categoryId":3,"sku":"A-1"}`), &o))

	assert.Equal(t, "7", o.ID)
	assert.Equal(t, "X", o.Name)
	assert.Equal(t, "3", o.Field("categoryId"))
	assert.Equal(t, "A-1", o.Field("sku"))
	assert.Equal(t, "", o.Field("missing"))
}

func TestOptionUnmarshalStringID(t *testing.T) {
	var o Option
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1b2","name":null}`), &o))

	assert.Equal(t, "c1b2", o.ID)
	assert.Equal(t, "", o.Name)
	assert.Empty(t, o.Extra)
}

func TestOptionUnmarshalRejectsBadID(t *testing.T) {
	cases := map[string]string{
		"missing": `{"name":"X"}`,
		"empty":   `{"id":"","name":"X"}`,
		"object":  `{"id":{"a":1},"name":"X"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var o Option
			require.Error(t, json.Unmarshal([]byte(body), &o))
		})
	}
}

func TestOptionMarshalKeepsNumericID(t *testing.T) {
	o := Option{ID: "42", Name: "Cola", Extra: map[string]any{"unit": "can"}}
	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"name":"Cola","unit":"can"}`, string(data))
}

func TestSameID(t *testing.T) {
	a := &Option{ID: "1", Name: "a"}
	b := &Option{ID: "1", Name: "renamed"}
	c := &Option{ID: "2"}

	assert.True(t, SameID(nil, nil))
	assert.True(t, SameID(a, b))
	assert.False(t, SameID(a, c))
	assert.False(t, SameID(a, nil))
	assert.False(t, SameID(nil, c))
}

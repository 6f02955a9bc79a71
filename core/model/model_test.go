package model

import (
	"testing"
	"time"

	"datadiff/core/record"
	"datadiff/core/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type annotatedModel struct {
	ID        string    `diff:"id,STR,key"`
	Qty       int       `diff:"quantity,INT"`
	IsActive  bool      `diff:"active,BOOL"`
	AmountF   float64   `diff:"amount,MONEY"`
	CreatedAt time.Time `diff:"created_at,STR,format=2006-01-02 15:04:05"`
	Internal  string
}

type audit struct {
	UpdatedBy *string `diff:",STRING"`
}

type withEmbedded struct {
	Code string `diff:"code,STRING,key"`
	audit
	Skip int `diff:"-"`
}

func newAnnotated() annotatedModel {
	return annotatedModel{
		ID:        "abc",
		Qty:       5,
		IsActive:  true,
		AmountF:   9.99,
		CreatedAt: time.Date(2022, 7, 26, 12, 0, 0, 0, time.UTC),
		Internal:  "not tagged",
	}
}

func TestSchemaFromModel(t *testing.T) {
	keys, values, err := SchemaFromModel(newAnnotated())
	require.NoError(t, err)

	assert.Equal(t, []schema.Field{schema.F("id", schema.TypeString)}, keys)
	assert.Equal(t, []schema.Field{
		schema.F("quantity", schema.TypeInt),
		schema.F("active", schema.TypeBool),
		schema.F("amount", schema.TypeMoney),
		schema.F("created_at", schema.TypeString),
	}, values)
}

func TestValuesFromModel(t *testing.T) {
	m := newAnnotated()
	values, err := ValuesFromModel(&m)
	require.NoError(t, err)

	expected := record.Of(
		"id", "abc",
		"quantity", 5,
		"active", true,
		"amount", 9.99,
		"created_at", "2022-07-26 12:00:00",
	)
	assert.True(t, expected.Equal(values), "got %v", values.Map())
	assert.Equal(t, expected.Keys(), values.Keys())
}

func TestValuesFromModel_DefaultTimeLayout(t *testing.T) {
	type event struct {
		At time.Time `diff:"at,STRING"`
	}
	values, err := ValuesFromModel(event{At: time.Date(2022, 7, 26, 12, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "2022-07-26T12:00:00+00:00", values.Get("at").String())
}

func TestInspect_Embedded(t *testing.T) {
	m, err := Inspect(withEmbedded{})
	require.NoError(t, err)

	keys, values := m.Schema()
	assert.Equal(t, []schema.Field{schema.F("code", schema.TypeString)}, keys)
	assert.Equal(t, []schema.Field{schema.F("UpdatedBy", schema.TypeString)}, values)

	values1, err := m.Values(withEmbedded{Code: "x"})
	require.NoError(t, err)
	assert.True(t, values1.Get("UpdatedBy").IsNull())

	who := "alice"
	values2, err := m.Values(&withEmbedded{Code: "x", audit: audit{UpdatedBy: &who}})
	require.NoError(t, err)
	assert.Equal(t, "alice", values2.Get("UpdatedBy").String())
}

func TestInspect_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"not a struct", 42},
		{"nil", nil},
		{"missing type", struct {
			A int `diff:"a"`
		}{}},
		{"unknown type", struct {
			A int `diff:"a,UUID"`
		}{}},
		{"unknown option", struct {
			A int `diff:"a,INT,primary"`
		}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestModel_ValuesWrongType(t *testing.T) {
	m, err := Inspect(annotatedModel{})
	require.NoError(t, err)

	_, err = m.Values(withEmbedded{})
	assert.Error(t, err)
}

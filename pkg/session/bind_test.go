package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cqlwire/pkg/cql"
)

func TestCountMarkers(t *testing.T) {
	for _, tc := range []struct {
		query    string
		expected int
	}{
		{"SELECT * FROM users", 0},
		{"SELECT * FROM users WHERE name = ?", 1},
		{"INSERT INTO users (name, address) VALUES (?,?)", 2},
		{"SELECT * FROM users WHERE name = 'who?'", 0},
		{"SELECT * FROM users WHERE name = 'it''s ?' AND age = ?", 1},
		{`SELECT "what?" FROM users WHERE name = ?`, 1},
		{"SELECT * FROM users -- where name = ?\nWHERE age = ?", 1},
		{"SELECT * FROM users // where name = ?", 0},
		{"SELECT * FROM users /* name = ? */ WHERE age = ?", 1},
		{"SELECT * FROM users WHERE name = $$who?$$ AND age = ?", 1},
		{"SELECT * FROM users WHERE name = 'unterminated ?", 0},
		{"SELECT * FROM users /* unterminated ?", 0},
		{"UPDATE users SET emails = emails + ? WHERE name IN (?, ?)", 3},
	} {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, countMarkers(tc.query))
		})
	}
}

func TestBindArgumentsKeepsUndeclaredValues(t *testing.T) {
	o, err := NewExecutionOptions(WithArguments("Phoenix", 85023, nil, []string{"a"}))
	require.NoError(t, err)

	args, err := bindArguments("INSERT INTO users (name, zip, city, tags) VALUES (?, ?, ?, ?)", o)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Phoenix", 85023, nil, []string{"a"}}, args)
}

func TestBindArgumentsNullWithDeclaredType(t *testing.T) {
	o, err := NewExecutionOptions(
		WithArguments(nil),
		WithArgumentTypes(cql.TypeDate),
	)
	require.NoError(t, err)

	args, err := bindArguments("INSERT INTO users (birthday) VALUES (?)", o)
	require.NoError(t, err)
	v := args[0].(cql.Value)
	assert.True(t, v.IsNull())
	assert.Equal(t, cql.TypeDate, v.Type())
}

func TestWithArgumentTypesRejectsNil(t *testing.T) {
	_, err := NewExecutionOptions(WithArgumentTypes(cql.TypeText, nil))
	require.Error(t, err)
	assert.True(t, cql.IsInvalidArgument(err))
}

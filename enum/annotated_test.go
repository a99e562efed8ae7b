package enum

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type missingName struct{}

func (missingName) UnknownName() string { return "MISSING" }

type strictName struct{}

func (strictName) UnknownName() string { return "STRICT" }

func (strictName) AdapterOptions() []Option { return []Option{WithoutTypeCasting()} }

type conflictingName struct{}

func (conflictingName) UnknownName() string { return "A" }

type annotatedFields struct {
	Field  Annotated[plainInt, missingName]            `json:"field" yaml:"field" toml:"field"`
	List   []Annotated[plainInt, missingName]          `json:"list" yaml:"list" toml:"list"`
	Dict   map[string]Annotated[plainStr, missingName] `json:"dict" yaml:"dict" toml:"dict"`
	Strict Annotated[plainInt, strictName]             `json:"strict" yaml:"strict" toml:"strict"`
}

func TestAnnotated_JSON(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		var m annotatedFields
		payload := `{"field": 44, "list": [1, "17"], "dict": {"a": "1", "b": "x"}, "strict": 45}`
		require.NoError(t, json.Unmarshal([]byte(payload), &m))

		assert.Equal(t, "MISSING", m.Field.Name())
		assert.Equal(t, plainInt(44), m.Field.Value())
		require.Len(t, m.List, 2)
		assert.Equal(t, plainIntA, m.List[0].Member)
		assert.Equal(t, "MISSING", m.List[1].Name())
		assert.Equal(t, plainInt(17), m.List[1].Value())
		assert.Equal(t, plainStrA, m.Dict["a"].Member)
		assert.Equal(t, "MISSING", m.Dict["b"].Name())
		assert.Equal(t, "STRICT", m.Strict.Name())
	})

	t.Run("casting options from the name type", func(t *testing.T) {
		var m annotatedFields
		err := json.Unmarshal([]byte(`{"strict": "45"}`), &m)
		require.Error(t, err)
		assert.True(t, IsCastError(err))
	})

	t.Run("matches Coerce", func(t *testing.T) {
		var m annotatedFields
		require.NoError(t, json.Unmarshal([]byte(`{"field": "44"}`), &m))
		want, err := Coerce(NewAdapter(WithUnknownName("MISSING")), plainInts, "44")
		require.NoError(t, err)
		assert.Equal(t, want, m.Field.Member)
	})

	t.Run("round trip", func(t *testing.T) {
		in := annotatedFields{Field: AnnotateMember[plainInt, missingName](plainInts.Fallback(44))}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out annotatedFields
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, plainInt(44), out.Field.Value())
		assert.Equal(t, "MISSING", out.Field.Name())
	})

	t.Run("fallback enumeration keeps its own name", func(t *testing.T) {
		var a Annotated[testStr, missingName]
		require.NoError(t, a.UnmarshalJSON([]byte(`"zzz"`)))
		assert.Equal(t, DefaultUnknownName, a.Name())
	})

	t.Run("name of a declared member", func(t *testing.T) {
		var a Annotated[plainInt, conflictingName]
		assert.True(t, IsNameConflict(a.UnmarshalJSON([]byte(`44`))))
		require.NoError(t, a.UnmarshalJSON([]byte(`1`)))
		assert.Equal(t, plainIntA, a.Member)
	})
}

func TestAnnotated_Text(t *testing.T) {
	var a Annotated[plainInt, missingName]
	require.NoError(t, a.UnmarshalText([]byte("44")))
	assert.Equal(t, "MISSING", a.Name())
	assert.Equal(t, plainInt(44), a.Value())

	var strict Annotated[plainInt, strictName]
	assert.True(t, IsCastError(strict.UnmarshalText([]byte("44"))))
}

func TestAnnotated_YAML(t *testing.T) {
	var m annotatedFields
	require.NoError(t, yaml.Unmarshal([]byte("field: 44\nlist: [2, 9]\nstrict: 45"), &m))
	assert.Equal(t, "MISSING", m.Field.Name())
	require.Len(t, m.List, 2)
	assert.Equal(t, plainIntB, m.List[0].Member)
	assert.Equal(t, "MISSING", m.List[1].Name())
	assert.Equal(t, "STRICT", m.Strict.Name())

	var cast annotatedFields
	err := yaml.Unmarshal([]byte("strict: '45'"), &cast)
	require.Error(t, err)
	assert.True(t, IsCastError(err))
}

func TestAnnotated_TOML(t *testing.T) {
	doc := `
field = 44
list = [1, 9]
strict = 45

[dict]
z = "unknown-z"
`
	var m annotatedFields
	_, err := toml.Decode(doc, &m)
	require.NoError(t, err)
	assert.Equal(t, "MISSING", m.Field.Name())
	require.Len(t, m.List, 2)
	assert.Equal(t, "MISSING", m.List[1].Name())
	assert.Equal(t, "MISSING", m.Dict["z"].Name())
	assert.Equal(t, "STRICT", m.Strict.Name())
	assert.Equal(t, plainInt(45), m.Strict.Value())
}

func TestAnnotated_Scan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta("SELECT kind FROM messages")

	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"kind"}).
			AddRow(int64(44)).
			AddRow(nil).
			AddRow([]byte("2")),
	)
	rows, err := db.Query("SELECT kind FROM messages")
	require.NoError(t, err)

	var got []Annotated[plainInt, missingName]
	for rows.Next() {
		var a Annotated[plainInt, missingName]
		require.NoError(t, rows.Scan(&a))
		got = append(got, a)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	require.Len(t, got, 3)
	assert.Equal(t, "MISSING", got[0].Name())
	assert.Equal(t, plainInt(44), got[0].Value())
	assert.True(t, got[1].IsZero())
	assert.Equal(t, plainIntB, got[2].Member)

	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"kinds"}).AddRow([]byte("{1,44}")))
	var kinds []Annotated[plainInt, missingName]
	require.NoError(t, db.QueryRow("SELECT kind FROM messages").Scan(pq.Array(&kinds)))
	require.Len(t, kinds, 2)
	assert.Equal(t, plainIntA, kinds[0].Member)
	assert.Equal(t, "MISSING", kinds[1].Name())

	assert.NoError(t, mock.ExpectationsWereMet())
}

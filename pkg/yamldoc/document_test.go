package yamldoc_test

import (
	"testing"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/yamldoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *yamldoc.Document {
	t.Helper()
	doc, err := yamldoc.ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestRead_PresentAndAbsentKeys(t *testing.T) {
	doc := mustParse(t, "name: auth-kit\nversion: 1.2.0\n")

	value, ok := doc.Read("version")
	assert.True(t, ok)
	assert.Equal(t, "1.2.0", value)

	_, ok = doc.Read("no-such-key")
	assert.False(t, ok, "absent keys return a sentinel, not an error")
}

func TestWrite_ReplacesValueInPlace(t *testing.T) {
	doc := mustParse(t, "# header\nname: auth-kit\nversion: 1.2.0  # pinned\n")

	require.NoError(t, doc.Write("version", "1.3.0"))

	assert.Equal(t, "# header\nname: auth-kit\nversion: 1.3.0  # pinned\n", doc.String(),
		"write must only touch the target value")
}

func TestWrite_MissingKeyFails(t *testing.T) {
	doc := mustParse(t, "name: auth-kit\n")

	err := doc.Write("version", "1.0.0")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingKey))
}

func TestGetArray_ScalarListReturnsOrderedValues(t *testing.T) {
	doc := mustParse(t, "tags:\n  - auth\n  - multi-tenant\n  - jwt\n")

	values, count := doc.GetArray("tags")

	assert.Equal(t, []string{"auth", "multi-tenant", "jwt"}, values)
	assert.Equal(t, 3, count)
}

func TestGetArray_ObjectListReturnsCountOnly(t *testing.T) {
	doc := mustParse(t, `patterns:
  - name: a.md
    installed_path: patterns/a.md
  - name: b.md
    installed_path: patterns/b.md
commands:
  - name: c.md
`)

	values, count := doc.GetArray("patterns")
	assert.Nil(t, values)
	assert.Equal(t, 2, count, "count must not leak entries from sibling sections")

	_, count = doc.GetArray("commands")
	assert.Equal(t, 1, count)
}

func TestGetArray_AbsentKey(t *testing.T) {
	doc := mustParse(t, "name: x\n")

	values, count := doc.GetArray("tags")
	assert.Nil(t, values)
	assert.Zero(t, count)
}

func TestGetNested_PathWithIndex(t *testing.T) {
	doc := mustParse(t, `contents:
  patterns:
    - name: jwt-validation.md
      installed_path: patterns/jwt-validation.md
    - name: api-key-rotation.md
      installed_path: patterns/api-key-rotation.md
`)

	value, ok := doc.GetNested("contents.patterns[1].name")
	require.True(t, ok)
	assert.Equal(t, "api-key-rotation.md", value)

	value, ok = doc.GetNested("contents.patterns[0].installed_path")
	require.True(t, ok)
	assert.Equal(t, "patterns/jwt-validation.md", value)
}

func TestGetNested_MissingStepsReportNotFound(t *testing.T) {
	doc := mustParse(t, "contents:\n  patterns:\n    - name: a.md\n")

	for _, path := range []string{
		"contents.patterns[3].name", // index out of range
		"contents.designs[0].name",  // absent sequence
		"contents.patterns[0].hash", // absent field
		"contents.patterns",         // not a scalar
		"contents.patterns[x].name", // malformed index
	} {
		_, ok := doc.GetNested(path)
		assert.False(t, ok, "path %q should not resolve", path)
	}
}

func TestNewDocument_BuildAndSerialize(t *testing.T) {
	doc := yamldoc.NewDocument()
	doc.Root().SetScalar("name", "auth-kit")
	seq := yamldoc.NewSequence()
	seq.Append(yamldoc.NewScalar("auth"))
	doc.Root().Set("tags", seq)

	assert.Equal(t, "name: auth-kit\ntags:\n  - auth\n", doc.String())
}

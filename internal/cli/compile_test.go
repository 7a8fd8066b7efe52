package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Text(t *testing.T) {
	out, err := execute(t, "compile", "-s", orderSchema, "Shop.Order", `Items.Sku = "X1"`)
	require.NoError(t, err)
	assert.Equal(t, "Items != null && Items.Any(Sku == \"X1\")\n", out)
}

func TestCompile_CUESchema(t *testing.T) {
	out, err := execute(t, "compile", "-s", "testdata/order.cue", "Shop.Order", `city = "Oslo"`)
	require.NoError(t, err)
	assert.Equal(t, "Customer.Addresses != null && Customer.Addresses.Any(City == \"Oslo\")\n", out)
}

func TestCompile_JSON(t *testing.T) {
	out, err := execute(t, "compile", "-s", orderSchema, "--format", "json", "Shop.Order", `status in "Paid,Shipped"`)
	require.NoError(t, err)

	var data CompileOutput
	resp := decode(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Shop.Order", data.Table)
	assert.Equal(t, "implicit", data.Strategy)
	assert.Equal(t, `Status in ("Paid", "Shipped")`, data.Text)
}

func TestCompile_StrategyAndParameters(t *testing.T) {
	out, err := execute(t, "compile", "-s", orderSchema, "--strategy", "lambda", "--parameters",
		"Shop.Order", `Items.Sku = "X1"`)
	require.NoError(t, err)
	assert.Equal(t, "Items != null && Items.Any(i => i.Sku == @0)\n  @0 = \"X1\"\n", out)
}

func TestCompile_Config(t *testing.T) {
	config := filepath.Join(t.TempDir(), "automodel.yaml")
	require.NoError(t, os.WriteFile(config, []byte("strategy: lambda\nlike_function: DbFunctions.Like\n"), 0o644))

	out, err := execute(t, "compile", "-s", orderSchema, "--config", config, "Shop.Order", `note like "ab"`)
	require.NoError(t, err)
	assert.Equal(t, "DbFunctions.Like(Note, \"%ab%\")\n", out)

	// flags override the file
	out, err = execute(t, "compile", "-s", orderSchema, "--config", config, "--strategy", "implicit",
		"Shop.Order", `Items.Sku = "X1"`)
	require.NoError(t, err)
	assert.Equal(t, "Items != null && Items.Any(Sku == \"X1\")\n", out)
}

func TestCompile_Diagnostics(t *testing.T) {
	out, err := execute(t, "compile", "-s", orderSchema, "Shop.Order", `nope = "1" && id = "2"`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "nope = \"1\" && Id == 2\n")
	assert.Contains(t, out, "✗ 1 clause(s) failed")
	assert.Contains(t, out, "FIELD_NOT_FOUND")

	out, err = execute(t, "compile", "-s", orderSchema, "--format", "json", "Shop.Order", `nope = "1"`)
	require.Error(t, err)
	var data CompileOutput
	resp := decode(t, out, &data)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeDiagnostics, resp.Error.Code)
	require.Len(t, data.Diagnostics, 1)
	assert.Equal(t, "FIELD_NOT_FOUND", string(data.Diagnostics[0].Code))
}

func TestCompile_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "no schema", args: []string{"compile", "Shop.Order", "a"}, code: ErrCodeNoSchema},
		{name: "missing schema file", args: []string{"compile", "-s", "testdata/none.yaml", "Shop.Order", "a"}, code: ErrCodeSchemaRead},
		{name: "unknown table", args: []string{"compile", "-s", orderSchema, "Shop.Nope", "a"}, code: ErrCodeUnknownTable},
		{name: "bad strategy", args: []string{"compile", "-s", orderSchema, "--strategy", "sideways", "Shop.Order", "a"}, code: ErrCodeConfig},
		{name: "missing config", args: []string{"compile", "-s", orderSchema, "--config", "testdata/none.yaml", "Shop.Order", "a"}, code: ErrCodeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json"}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			resp := decode(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_Record(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "compile", "-s", orderSchema, "--format", "json", "--record", db, "Shop.Order", `note = "a"`)
	require.NoError(t, err)
	resp := decode(t, out, nil)
	require.NotEmpty(t, resp.RecordID)

	out, err = execute(t, "history", "show", "--db", db, resp.RecordID)
	require.NoError(t, err)
	assert.Contains(t, out, "expression: Note == \"a\"")
	assert.Contains(t, out, "table:      Shop.Order")
}

func TestSelect(t *testing.T) {
	out, err := execute(t, "select", "-s", orderSchema, "Shop.Order", "status, Name")
	require.NoError(t, err)
	assert.Equal(t, "new { Status, Customer.Name }\n", out)

	out, err = execute(t, "select", "-s", orderSchema, "Shop.Order", "note, created", "--except")
	require.NoError(t, err)
	assert.Equal(t, "new { Id, Status, Customer.Name }\n", out)

	out, err = execute(t, "select", "-s", orderSchema, "--format", "json", "Shop.Order", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeProjection, resp.Error.Code)
	assert.Equal(t, "FIELD_NOT_FOUND", resp.Error.Details)
}

func TestFuzzy(t *testing.T) {
	out, err := execute(t, "fuzzy", "-s", orderSchema, "Shop.Order", "pa", "--columns", "note, status")
	require.NoError(t, err)
	assert.Equal(t, "(EF.Functions.Like(Note, \"%pa%\")) || (Status in (\"Paid\"))\n", out)

	_, err = execute(t, "fuzzy", "-s", orderSchema, "Shop.Order", "pa", "--columns", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestFields(t *testing.T) {
	out, err := execute(t, "fields", "-s", orderSchema, "Shop.Order")
	require.NoError(t, err)
	assert.Contains(t, out, "Shop.Order (Order)")
	assert.Contains(t, out, "Items.Sku")
	assert.Contains(t, out, "Customer.Addresses.City")

	out, err = execute(t, "fields", "-s", orderSchema, "--format", "json", "Shop.Order")
	require.NoError(t, err)
	var data struct {
		Table  string      `json:"table"`
		Fields []FieldInfo `json:"fields"`
	}
	decode(t, out, &data)
	assert.Equal(t, "Shop.Order", data.Table)
	require.Len(t, data.Fields, 7)
	assert.Equal(t, FieldInfo{
		Path:        "Customer.Addresses.City",
		Navigation:  "Customer.Addresses[]",
		Names:       []string{"city"},
		Type:        "string",
		Title:       "City",
		Quantifiers: 1,
		Fuzzy:       "yes",
	}, data.Fields[6])
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "-s", "testdata/order.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/order.cue: 1 table(s)")
	assert.Contains(t, out, "Shop.Order: 10 field(s)")

	bad := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(bad, []byte("tables: [{name: 1}]\n"), 0o644))
	out, err = execute(t, "validate", "-s", bad, "--format", "json")
	require.Error(t, err)
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeSchemaParse, resp.Error.Code)
}

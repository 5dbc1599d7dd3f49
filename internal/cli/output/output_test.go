package output

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatTable, true},
		{"table", FormatTable, true},
		{" JSON ", FormatJSON, true},
		{"yml", FormatYAML, true},
		{"yaml", FormatYAML, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type block struct {
	Index   int    `json:"index" yaml:"index"`
	Preview string `json:"preview" yaml:"preview"`
}

type blocks []block

func (b blocks) Headers() []string { return []string{"Block", "Preview"} }
func (b blocks) Rows() [][]string {
	rows := make([][]string, 0, len(b))
	for _, x := range b {
		rows = append(rows, []string{strconv.Itoa(x.Index), x.Preview})
	}
	return rows
}

func TestPrinter_Formats(t *testing.T) {
	data := blocks{{0, "hello"}, {3, "world"}}

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(data))
		out := buf.String()
		assert.Contains(t, out, "BLOCK")
		assert.Contains(t, out, "PREVIEW")
		assert.Contains(t, out, "hello")
		assert.Contains(t, out, "world")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(data))
		var got []block
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []block(data), got)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(data))
		var got []block
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []block(data), got)
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"used": 2}))
		assert.JSONEq(t, `{"used": 2}`, buf.String())
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, NewPrinter(&bytes.Buffer{}, Format("xml"), false).Print(data))
	})
}

func TestPrinter_Colors(t *testing.T) {
	var plain, colored bytes.Buffer
	NewPrinter(&plain, FormatTable, false).Success("Directory 'docs' created.")
	NewPrinter(&colored, FormatTable, true).Success("Directory 'docs' created.")

	assert.Equal(t, "Directory 'docs' created.\n", plain.String())
	assert.Equal(t, Green+"Directory 'docs' created."+Reset+"\n", colored.String())

	p := NewPrinter(&bytes.Buffer{}, FormatTable, true)
	assert.Equal(t, "x", p.Paint("", "x"))
	assert.Equal(t, Red+"x"+Reset, p.Paint(Red, "x"))
}

func TestTableAndKeyValues(t *testing.T) {
	tbl := NewTable("Name", "Type")
	tbl.AddRow("docs", "DIR")
	assert.Equal(t, [][]string{{"docs", "DIR"}}, tbl.Rows())

	var buf bytes.Buffer
	require.NoError(t, KeyValues(&buf, [][2]string{{"Used", "2"}, {"Free", "98"}}))
	assert.Contains(t, buf.String(), "Used")
	assert.Contains(t, buf.String(), "98")
}

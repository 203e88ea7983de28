package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xunicode "golang.org/x/text/encoding/unicode"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(DefaultDecoderOptions())
	require.NoError(t, err)
	return d
}

func TestDecode_NormalizesRaggedRows(t *testing.T) {
	d := newTestDecoder(t)

	tbl, err := d.Decode([]byte("a,b,c\n1,2,3\n4,5\n6,7,8,9\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", ""}, {"6", "7", "8"}}, tbl.Rows)
	assert.Equal(t, 1, tbl.Padded)
	assert.Equal(t, 1, tbl.Truncated)
	assert.Equal(t, "utf-8", tbl.Encoding)
	assert.Equal(t, ',', tbl.Delimiter)
}

func TestDecode_Encodings(t *testing.T) {
	utf16, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.UseBOM).NewEncoder().Bytes([]byte("Name\tCity\nÅse\tTromsø\n"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		raw       []byte
		encoding  string
		delimiter rune
		header    []string
		first     []string
	}{
		{
			name:      "utf-8 with signature",
			raw:       append([]byte{0xEF, 0xBB, 0xBF}, "Name;City\nÅse;Oslo\n"...),
			encoding:  "utf-8-sig",
			delimiter: ';',
			header:    []string{"Name", "City"},
			first:     []string{"Åse", "Oslo"},
		},
		{
			name:      "utf-16 with byte order mark",
			raw:       utf16,
			encoding:  "utf-16",
			delimiter: '\t',
			header:    []string{"Name", "City"},
			first:     []string{"Åse", "Tromsø"},
		},
		{
			name:      "plain utf-8",
			raw:       []byte("Name|City\nJosé|Málaga\n"),
			encoding:  "utf-8",
			delimiter: '|',
			header:    []string{"Name", "City"},
			first:     []string{"José", "Málaga"},
		},
		{
			name:      "windows-1252 falls through utf-8",
			raw:       []byte("Name;City\nM\xfcller;K\xf6ln\n"),
			encoding:  "windows-1252",
			delimiter: ';',
			header:    []string{"Name", "City"},
			first:     []string{"Müller", "Köln"},
		},
		{
			name:      "crlf line endings",
			raw:       []byte("a,b\r\n1,2\r\n"),
			encoding:  "utf-8",
			delimiter: ',',
			header:    []string{"a", "b"},
			first:     []string{"1", "2"},
		},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := d.Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, tbl.Encoding)
			assert.Equal(t, tt.delimiter, tbl.Delimiter)
			assert.Equal(t, tt.header, tbl.Header)
			require.NotEmpty(t, tbl.Rows)
			assert.Equal(t, tt.first, tbl.Rows[0])
		})
	}
}

func TestDecode_RegionalEncodingIsConfigurable(t *testing.T) {
	opts := DefaultDecoderOptions()
	opts.RegionalEncoding = "cp1251"
	d, err := NewDecoder(opts)
	require.NoError(t, err)

	// "Имя;Город" / "Иван;Москва" in windows-1251
	raw := []byte("\xc8\xec\xff;\xc3\xee\xf0\xee\xe4\n\xc8\xe2\xe0\xed;\xcc\xee\xf1\xea\xe2\xe0\n")
	tbl, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "windows-1251", tbl.Encoding)
	assert.Equal(t, []string{"Имя", "Город"}, tbl.Header)
	assert.Equal(t, []string{"Иван", "Москва"}, tbl.Rows[0])
}

func TestDecode_DetectRegional(t *testing.T) {
	opts := DefaultDecoderOptions()
	opts.DetectRegional = true
	d, err := NewDecoder(opts)
	require.NoError(t, err)

	raw := []byte("Name;Stadt;Strasse\nM\xfcller;K\xf6ln;Hauptstra\xdfe 1\nB\xe4cker;M\xfcnchen;Gartenweg 2\n")
	tbl, err := d.Decode(raw)
	require.NoError(t, err)

	assert.NotEqual(t, "utf-8", tbl.Encoding)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, 3, tbl.Width())
}

func TestDecode_DelimiterSniffing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon beats comma in values", "a;b\n1,5;2,5\n3,5;4,5\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"tie goes to comma", "a,b;c\n", ','},
		{"most consistent lines wins", "a;b;c\n1;2;3\n4;5;6\nx,y\n", ';'},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := d.Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tbl.Delimiter)
		})
	}
}

func TestDecode_HeaderIsTrimmed(t *testing.T) {
	d := newTestDecoder(t)

	tbl, err := d.Decode([]byte(" Emp_ID ,\tFull Name ,Dept\n1,Ann,Sales\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Emp_ID", "Full Name", "Dept"}, tbl.Header)
}

func TestDecode_HeaderOnly(t *testing.T) {
	d := newTestDecoder(t)

	tbl, err := d.Decode([]byte("a;b;c\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestDecode_Unreadable(t *testing.T) {
	controls := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04, 0x05, ','}, 50)

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"whitespace only", []byte("  \n\n")},
		{"single column", []byte("name\nann\nbob\n")},
		{"control characters", controls},
		{"unterminated quote", []byte("a,b\n\"x,1\n2,3\n4,5\n")},
		{"unterminated quote in header", []byte("a,\"b\n1,2\n3,4\n")},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := d.Decode(tt.input)
			assert.ErrorIs(t, err, ErrUnreadableFile)
			assert.Nil(t, tbl)
		})
	}
}

func TestDecode_QuotedFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "multi-line quoted cell",
			input: "a,b\n\"x\n1\",2\n3,4\n",
			want:  [][]string{{"x\n1", "2"}, {"3", "4"}},
		},
		{
			name:  "quoted last cell without newline",
			input: "a,b\n1,\"two\"",
			want:  [][]string{{"1", "two"}},
		},
		{
			name:  "escaped quote at end",
			input: "a,b\n1,\"say \"\"hi\"\"\"\n",
			want:  [][]string{{"1", `say "hi"`}},
		},
		{
			name:  "stray quote inside unquoted cell",
			input: "size,item\n12\",pipe\n",
			want:  [][]string{{`12"`, "pipe"}},
		},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := d.Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tbl.Rows)
			assert.Zero(t, tbl.Padded)
		})
	}
}

func TestOpenQuoteAtEnd(t *testing.T) {
	assert.True(t, openQuoteAtEnd("a,b\n\"x,1\n2,3\n", 2, 1, ','))
	assert.True(t, openQuoteAtEnd("a,b\n1,\"x\"\"\n", 2, 3, ','))
	assert.False(t, openQuoteAtEnd("a,b\n1,\"x\"\n", 2, 3, ','))
	assert.False(t, openQuoteAtEnd("a,b\n1,\"x\"", 2, 3, ','))
	assert.False(t, openQuoteAtEnd("a,b\n1,2\n", 2, 3, ','))
}

func TestDecode_UnreadableReportsEveryAttempt(t *testing.T) {
	d := newTestDecoder(t)

	_, err := d.Decode(bytes.Repeat([]byte{0x01, 0x02, ','}, 40))
	require.Error(t, err)

	msg := err.Error()
	for _, enc := range []string{"utf-8-sig", "utf-16", "utf-8", "windows-1252", "latin-1"} {
		assert.Contains(t, msg, enc+":")
	}
}

func TestDecode_EveryRowMatchesHeaderWidth(t *testing.T) {
	inputs := []string{
		"a,b,c\n1\n1,2\n1,2,3\n1,2,3,4,5\n",
		"x;y\n;\n;;;\n\"q;1\";2\n",
		"h1\th2\th3\th4\n1\t2\n\n3\t4\t5\t6\t7\n",
		"a|b\n|\n1|2|3\n",
	}

	d := newTestDecoder(t)
	for _, in := range inputs {
		tbl, err := d.Decode([]byte(in))
		require.NoError(t, err, "input %q", in)
		for i, row := range tbl.Rows {
			assert.Len(t, row, len(tbl.Header), "input %q row %d", in, i)
		}
	}
}

func TestDecodeReader_MaxFileSize(t *testing.T) {
	opts := DefaultDecoderOptions()
	opts.MaxFileSize = 10
	d, err := NewDecoder(opts)
	require.NoError(t, err)

	_, err = d.DecodeReader(strings.NewReader("a,b\n1,2\n3,4\n5,6\n"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	tbl, err := d.DecodeReader(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestDecodeFile(t *testing.T) {
	d := newTestDecoder(t)

	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0644))

	tbl, err := d.DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)

	_, err = d.DecodeFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewDecoder_Validation(t *testing.T) {
	opts := DefaultDecoderOptions()
	opts.RegionalEncoding = "ebcdic"
	_, err := NewDecoder(opts)
	assert.Error(t, err)

	opts = DefaultDecoderOptions()
	opts.MaxBadRatio = 2
	_, err = NewDecoder(opts)
	assert.Error(t, err)
}

func TestLookupCodePage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"windows-1252", "windows-1252", true},
		{"CP1252", "windows-1252", true},
		{"ISO-8859-1", "windows-1252", true},
		{"iso_8859_15", "iso-8859-15", true},
		{"KOI8-R", "koi8-r", true},
		{"shift_jis", "shift-jis", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, cm, ok := LookupCodePage(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, name)
			if tt.ok {
				assert.NotNil(t, cm)
			}
		})
	}
}

func TestBadRuneRatio(t *testing.T) {
	assert.Zero(t, badRuneRatio("a,b\tc\r\n"))
	assert.Zero(t, badRuneRatio(""))
	assert.InDelta(t, 0.5, badRuneRatio("a\x01"), 1e-9)
	assert.InDelta(t, 0.5, badRuneRatio("a�"), 1e-9)
}

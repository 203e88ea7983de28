package core

// encoding.go holds the ordered encoding candidates tried by the Decoder.
//
// Each candidate either decodes the raw bytes to text or reports why it does
// not apply. Candidates that cannot reject input (8-bit code pages) are
// followed by a plausibility check on the decoded text, so a UTF-16 file
// without a BOM is not silently accepted as latin-1 gibberish.

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	errNoBOM = errors.New("no byte order mark")
)

// encodingCandidate decodes raw bytes to UTF-8 text or explains why it can't.
type encodingCandidate struct {
	name   string
	decode func(raw []byte) (string, error)
}

// attempt is the tagged outcome of one candidate.
type attempt struct {
	encoding string
	err      error
}

// codePages lists the 8-bit code pages usable as the regional candidate.
var codePages = map[string]*charmap.Charmap{
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1253": charmap.Windows1253,
	"windows-1254": charmap.Windows1254,
	"windows-1257": charmap.Windows1257,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-5":   charmap.ISO8859_5,
	"iso-8859-7":   charmap.ISO8859_7,
	"iso-8859-15":  charmap.ISO8859_15,
	"koi8-r":       charmap.KOI8R,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"macintosh":    charmap.Macintosh,
}

// codePageAliases maps alternative spellings to codePages keys.
// iso-8859-1 resolves to windows-1252, its printable superset.
var codePageAliases = map[string]string{
	"cp1250":     "windows-1250",
	"cp1251":     "windows-1251",
	"cp1252":     "windows-1252",
	"cp1253":     "windows-1253",
	"cp1254":     "windows-1254",
	"cp1257":     "windows-1257",
	"iso-8859-1": "windows-1252",
	"latin2":     "iso-8859-2",
	"latin9":     "iso-8859-15",
	"ibm437":     "cp437",
	"ibm850":     "cp850",
	"mac-roman":  "macintosh",
}

// LookupCodePage resolves a code page name to its canonical name and charmap.
func LookupCodePage(name string) (string, *charmap.Charmap, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if alias, ok := codePageAliases[key]; ok {
		key = alias
	}
	cm, ok := codePages[key]
	return key, cm, ok
}

func utf8SigCandidate() encodingCandidate {
	return encodingCandidate{
		name: "utf-8-sig",
		decode: func(raw []byte) (string, error) {
			if !bytes.HasPrefix(raw, bomUTF8) {
				return "", errNoBOM
			}
			body := raw[len(bomUTF8):]
			if !utf8.Valid(body) {
				return "", invalidUTF8(body)
			}
			return string(body), nil
		},
	}
}

func utf16Candidate() encodingCandidate {
	return encodingCandidate{
		name: "utf-16",
		decode: func(raw []byte) (string, error) {
			if !bytes.HasPrefix(raw, bomUTF16LE) && !bytes.HasPrefix(raw, bomUTF16BE) {
				return "", errNoBOM
			}
			dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM).NewDecoder()
			out, _, err := transform.Bytes(dec, raw)
			if err != nil {
				return "", fmt.Errorf("decode utf-16: %w", err)
			}
			return string(out), nil
		},
	}
}

func utf8Candidate() encodingCandidate {
	return encodingCandidate{
		name: "utf-8",
		decode: func(raw []byte) (string, error) {
			if !utf8.Valid(raw) {
				return "", invalidUTF8(raw)
			}
			return string(raw), nil
		},
	}
}

func charmapCandidate(name string, cm *charmap.Charmap) encodingCandidate {
	return encodingCandidate{
		name: name,
		decode: func(raw []byte) (string, error) {
			out, _, err := transform.Bytes(cm.NewDecoder(), raw)
			if err != nil {
				return "", fmt.Errorf("decode %s: %w", name, err)
			}
			return string(out), nil
		},
	}
}

// latin1Candidate never fails to decode; every byte is a code point.
func latin1Candidate() encodingCandidate {
	return charmapCandidate("latin-1", charmap.ISO8859_1)
}

// invalidUTF8 reports the offset of the first invalid byte.
func invalidUTF8(b []byte) error {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid utf-8 at byte %d", i)
		}
		i += size
	}
	return errors.New("invalid utf-8")
}

// badRuneRatio returns the share of replacement and control characters in s.
// Tab, carriage return and newline are structural and not counted.
func badRuneRatio(s string) float64 {
	total, bad := 0, 0
	for _, r := range s {
		total++
		switch {
		case r == utf8.RuneError:
			bad++
		case r == '\t' || r == '\n' || r == '\r':
		case unicode.IsControl(r):
			bad++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bad) / float64(total)
}

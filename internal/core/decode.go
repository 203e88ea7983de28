package core

// decode.go turns raw CSV bytes into a Table.
//
// Decoding runs an explicit ordered list of encoding candidates. For each
// candidate the pipeline is: decode bytes, check the text is plausible, sniff
// the delimiter, parse and normalize rows. The first candidate to complete
// every step wins. Every failure is recorded as a tagged attempt so that an
// unreadable file reports why each encoding was rejected.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saintfish/chardet"

	"github.com/JonMunkholm/fieldmap/internal/config"
)

// chardetSampleSize bounds the bytes handed to charset detection.
const chardetSampleSize = 4096

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	RegionalEncoding string  // 8-bit code page tried before latin-1
	DetectRegional   bool    // let charset detection replace RegionalEncoding
	SampleLines      int     // records used for delimiter sniffing
	MaxBadRatio      float64 // tolerated share of replacement/control runes
	MaxFileSize      int64   // 0 means unlimited
}

// DecoderOptionsFromConfig converts decode settings into DecoderOptions.
func DecoderOptionsFromConfig(cfg config.DecodeConfig) DecoderOptions {
	return DecoderOptions{
		RegionalEncoding: cfg.RegionalEncoding,
		DetectRegional:   cfg.DetectRegional,
		SampleLines:      cfg.SampleLines,
		MaxBadRatio:      cfg.MaxBadRatio,
		MaxFileSize:      cfg.MaxFileSize,
	}
}

// DefaultDecoderOptions returns the options used when nothing is configured.
func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{
		RegionalEncoding: "windows-1252",
		SampleLines:      20,
		MaxBadRatio:      0.02,
	}
}

// Decoder infers encoding and delimiter of CSV input.
// A Decoder holds no per-file state and is safe for concurrent use.
type Decoder struct {
	opts     DecoderOptions
	regional encodingCandidate
}

// NewDecoder validates opts and builds a Decoder.
func NewDecoder(opts DecoderOptions) (*Decoder, error) {
	if opts.SampleLines <= 0 {
		opts.SampleLines = 20
	}
	if opts.MaxBadRatio < 0 || opts.MaxBadRatio > 1 {
		return nil, fmt.Errorf("max bad ratio must be between 0 and 1, got %v", opts.MaxBadRatio)
	}
	if opts.RegionalEncoding == "" {
		opts.RegionalEncoding = "windows-1252"
	}

	name, cm, ok := LookupCodePage(opts.RegionalEncoding)
	if !ok {
		return nil, fmt.Errorf("unsupported regional encoding %q", opts.RegionalEncoding)
	}

	return &Decoder{
		opts:     opts,
		regional: charmapCandidate(name, cm),
	}, nil
}

// Decode converts raw bytes into a Table.
// It fails with ErrUnreadableFile when no encoding/delimiter combination
// yields a consistent table; no partial table is returned in that case.
func (d *Decoder) Decode(raw []byte) (*Table, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnreadableFile)
	}

	var attempts []attempt
	for _, c := range d.candidates(raw) {
		t, err := d.try(c, raw)
		if err != nil {
			attempts = append(attempts, attempt{encoding: c.name, err: err})
			continue
		}
		t.Encoding = c.name
		return t, nil
	}

	return nil, unreadable(attempts)
}

// DecodeReader reads r fully and decodes it, honoring MaxFileSize.
func (d *Decoder) DecodeReader(r io.Reader) (*Table, error) {
	if d.opts.MaxFileSize > 0 {
		r = io.LimitReader(r, d.opts.MaxFileSize+1)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if d.opts.MaxFileSize > 0 && int64(len(raw)) > d.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, d.opts.MaxFileSize)
	}

	return d.Decode(raw)
}

// DecodeFile opens path, decodes its contents and closes it on every path.
func (d *Decoder) DecodeFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return d.DecodeReader(f)
}

// candidates returns the ordered encoding candidates for raw.
func (d *Decoder) candidates(raw []byte) []encodingCandidate {
	regional := d.regional
	if d.opts.DetectRegional {
		if c, ok := detectRegional(raw); ok {
			regional = c
		}
	}

	return []encodingCandidate{
		utf8SigCandidate(),
		utf16Candidate(),
		utf8Candidate(),
		regional,
		latin1Candidate(),
	}
}

// try runs one candidate through the full decode pipeline.
func (d *Decoder) try(c encodingCandidate, raw []byte) (*Table, error) {
	text, err := c.decode(raw)
	if err != nil {
		return nil, err
	}

	if ratio := badRuneRatio(text); ratio > d.opts.MaxBadRatio {
		return nil, fmt.Errorf("%.1f%% replacement or control characters", ratio*100)
	}

	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no content")
	}

	delim, err := sniffDelimiter(text, d.opts.SampleLines)
	if err != nil {
		return nil, err
	}

	t, err := parseTable(text, delim)
	if err != nil {
		return nil, fmt.Errorf("parse with %s delimiter: %w", DelimiterName(delim), err)
	}
	return t, nil
}

// detectRegional asks chardet for a code page hint. Only hints naming a
// supported 8-bit code page are used.
func detectRegional(raw []byte) (encodingCandidate, bool) {
	sample := raw
	if len(sample) > chardetSampleSize {
		sample = sample[:chardetSampleSize]
	}

	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || res == nil {
		return encodingCandidate{}, false
	}

	name, cm, ok := LookupCodePage(res.Charset)
	if !ok {
		return encodingCandidate{}, false
	}
	return charmapCandidate(name, cm), true
}

// unreadable folds the attempt log into a single ErrUnreadableFile.
func unreadable(attempts []attempt) error {
	reasons := make([]string, len(attempts))
	for i, a := range attempts {
		reasons[i] = a.encoding + ": " + a.err.Error()
	}
	return fmt.Errorf("%w: %s", ErrUnreadableFile, strings.Join(reasons, "; "))
}

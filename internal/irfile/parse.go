package irfile

import (
	"regexp"
	"strings"

	"irdbclean/internal"
)

// Separator is the canonical section delimiter line of the IR file format.
const Separator = "#"

var reNameStart = regexp.MustCompile(`(?i)^name\s*:`)

// lineClass is the result of classifying one input line.
type lineClass int

const (
	classBlank lineClass = iota
	classNameStart
	classComment
	classHeaderMarker
	classField
)

// classify assigns a line to exactly one class, in the format's priority
// order: record start, comment, header marker, field. Blank lines are ignored
// by the parser regardless of state.
func classify(line string) lineClass {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return classBlank
	case reNameStart.MatchString(trimmed):
		return classNameStart
	case strings.HasPrefix(trimmed, Separator):
		return classComment
	case strings.HasPrefix(trimmed, "Filetype:") || strings.HasPrefix(trimmed, "Version:"):
		return classHeaderMarker
	default:
		return classField
	}
}

// parser accumulates one file while scanning lines. States: the header (until
// the first record or stray field), a pending comment block, or an open
// record. Marker lines flush whatever is in progress.
type parser struct {
	source internal.SourceTag

	header          []string
	groups          []internal.RecordGroup
	pending         internal.CommentBlock
	currentComments internal.CommentBlock
	current         *internal.SignalRecord

	inHeader     bool
	sawSeparator bool
}

// Parse converts raw lines into a SignalFile. Parsing is permissive: no line
// is ever rejected, unrecognized lines become fields of the open record.
func Parse(lines []string, source internal.SourceTag) internal.SignalFile {
	p := &parser{source: source, inHeader: true}
	for _, line := range lines {
		p.consume(line)
	}
	p.flushRecord()

	return internal.SignalFile{
		Header: p.normalizedHeader(),
		Groups: p.groups,
		Source: source,
	}
}

func (p *parser) consume(line string) {
	switch classify(line) {
	case classBlank:
		// Ignored in every state.
	case classNameStart:
		p.flushRecord()
		p.inHeader = false
		p.startRecord(line)
	case classComment:
		if strings.TrimSpace(line) == Separator {
			p.sawSeparator = true
		}
		if p.inHeader {
			p.header = append(p.header, line)
			return
		}
		p.flushRecord()
		p.pending = append(p.pending, line)
	case classHeaderMarker:
		if p.inHeader {
			p.header = append(p.header, line)
			return
		}
		p.appendField(line)
	case classField:
		p.inHeader = false
		p.appendField(line)
	}
}

// startRecord opens a record for a "name:" line, attaching the pending
// comment block to it.
func (p *parser) startRecord(line string) {
	trimmed := strings.TrimSpace(line)
	loc := reNameStart.FindStringIndex(trimmed)
	name := strings.TrimSpace(trimmed[loc[1]:])

	p.current = &internal.SignalRecord{
		Name:   name,
		Lines:  []string{line},
		Source: p.source,
	}
	p.currentComments = p.pending
	p.pending = nil
}

// appendField adds a field line to the open record, opening a nameless one
// for orphan fields so no input line is dropped by the parser.
func (p *parser) appendField(line string) {
	if p.current == nil {
		p.current = &internal.SignalRecord{Source: p.source}
		p.currentComments = p.pending
		p.pending = nil
	}
	p.current.Lines = append(p.current.Lines, line)
}

func (p *parser) flushRecord() {
	if p.current == nil {
		return
	}
	p.groups = append(p.groups, internal.RecordGroup{
		Comments: p.currentComments,
		Record:   *p.current,
	})
	p.current = nil
	p.currentComments = nil
}

// normalizedHeader trims trailing separator lines and, when the file used
// separators at all, terminates the header with exactly one.
func (p *parser) normalizedHeader() []string {
	header := p.header
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == Separator {
		header = header[:len(header)-1]
	}
	if p.sawSeparator {
		header = append(header, Separator)
	}
	return header
}

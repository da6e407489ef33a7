// Package ldrawtext implements the concrete LDraw line tokenizer and
// color-definition file parser. The specification this module implements
// treats line tokenization as an external contract (only the wire format
// matters); this package supplies a working implementation of that
// contract so the module is usable end-to-end, in the same spirit as the
// teacher's gltfMeshExtractor is a concrete implementation sitting behind
// the loaderBackend contract rather than a stub.
package ldrawtext

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
	"github.com/segfault87/ldraw-go/ldrawerr"
)

// ParseMultipartDocument reads an entire LDraw file and returns its
// MultipartDocument: the body section, plus any `0 FILE` sub-parts.
func ParseMultipartDocument(r io.Reader) (*document.MultipartDocument, error) {
	sections, err := splitSections(r)
	if err != nil {
		return nil, err
	}

	result := &document.MultipartDocument{
		Subparts: make(map[common.PartAlias]*document.Document),
	}

	for idx, sec := range sections {
		doc, err := parseSection(sec)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			// The first section is always the body, whether or not it
			// begins with an explicit `0 FILE` marker.
			result.Body = *doc
			continue
		}
		alias := common.NewPartAlias(sec.fileName)
		result.Subparts[alias] = doc
	}

	return result, nil
}

// ParseDocument reads a single-part LDraw document (no `0 FILE` markers
// expected) and returns it directly. UnexpectedMultipart is returned if the
// input contains one.
func ParseDocument(r io.Reader) (*document.Document, error) {
	sections, err := splitSections(r)
	if err != nil {
		return nil, err
	}
	if len(sections) != 1 {
		return nil, &ldrawerr.ParseError{Reason: ldrawerr.UnexpectedMultipart, Detail: "expected a single-part document"}
	}
	return parseSection(sections[0])
}

// rawSection is the raw line group belonging to one `0 FILE` boundary (or
// the whole input, for a single-part file).
type rawSection struct {
	fileName string // empty for the initial, unnamed body section
	lines    []string
	startLn  int
}

// splitSections scans the whole input and partitions it at `0 FILE`
// boundaries, per §6.1.2: a file is multipart iff it contains one or more
// `0 FILE` markers after the body's description is established.
func splitSections(r io.Reader) ([]rawSection, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sections []rawSection
	current := rawSection{startLn: 1}
	lineNo := 0
	descriptionSeen := false

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			current.lines = append(current.lines, line)
			continue
		}

		fields := strings.Fields(trimmed)
		if fields[0] == "0" && len(fields) >= 2 && strings.EqualFold(fields[1], "FILE") {
			if len(current.lines) > 0 || current.fileName != "" {
				sections = append(sections, current)
			}
			name := strings.TrimSpace(strings.Join(fields[2:], " "))
			current = rawSection{fileName: name, startLn: lineNo + 1}
			descriptionSeen = true
			continue
		}

		if fields[0] == "0" && !descriptionSeen {
			descriptionSeen = true
		}
		current.lines = append(current.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ldrawerr.IoError{Inner: err}
	}
	sections = append(sections, current)

	return sections, nil
}

// parseSection parses the lines of one rawSection into a Document.
func parseSection(sec rawSection) (*document.Document, error) {
	doc := &document.Document{
		Name: sec.fileName,
		Bfc:  document.BfcCertification{Kind: document.NotApplicable},
	}

	descriptionCaptured := false

	for i, raw := range sec.lines {
		lineNo := sec.startLn + i
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		code := fields[0]

		switch code {
		case "0":
			if err := parseMetaLine(doc, fields[1:], line, lineNo, &descriptionCaptured); err != nil {
				return nil, err
			}
		case "1":
			ref, err := parsePartReference(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandPartReference, PartReference: ref})
		case "2":
			ln, err := parseLine(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandLine, Line: ln})
		case "3":
			tri, err := parseTriangle(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandTriangle, Triangle: tri})
		case "4":
			quad, err := parseQuad(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandQuad, Quad: quad})
		case "5":
			opt, err := parseOptionalLine(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandOptionalLine, OptionalLine: opt})
		default:
			return nil, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.TypeMismatch, Detail: fmt.Sprintf("unknown command code %q", code)}
		}
	}

	return doc, nil
}

func parseMetaLine(doc *document.Document, fields []string, fullLine string, lineNo int, descriptionCaptured *bool) error {
	if len(fields) == 0 {
		return nil
	}

	head := fields[0]

	switch {
	case strings.HasPrefix(head, "!"):
		key := strings.TrimPrefix(head, "!")
		value := strings.TrimSpace(strings.TrimPrefix(fullLine, "0 "+head))
		doc.Headers = append(doc.Headers, document.Header{Key: key, Value: value})
		return nil
	case strings.EqualFold(head, "Name:"):
		doc.Name = strings.TrimSpace(strings.Join(fields[1:], " "))
		return nil
	case strings.EqualFold(head, "Author:"):
		doc.Author = strings.TrimSpace(strings.Join(fields[1:], " "))
		return nil
	case strings.EqualFold(head, "STEP"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaStep}})
		return nil
	case strings.EqualFold(head, "WRITE"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaWrite, Comment: joinRest(fields)}})
		return nil
	case strings.EqualFold(head, "PRINT"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaPrint, Comment: joinRest(fields)}})
		return nil
	case strings.EqualFold(head, "CLEAR"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaClear}})
		return nil
	case strings.EqualFold(head, "PAUSE"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaPause}})
		return nil
	case strings.EqualFold(head, "SAVE"):
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaSave}})
		return nil
	case strings.EqualFold(head, "BFC"):
		stmt, err := parseBfcStatement(doc, fields[1:], lineNo)
		if err != nil {
			return err
		}
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaBfc, Bfc: stmt}})
		return nil
	default:
		comment := strings.TrimSpace(strings.Join(fields, " "))
		if !*descriptionCaptured && comment != "" {
			doc.Description = comment
			*descriptionCaptured = true
		}
		doc.Commands = append(doc.Commands, document.Command{Kind: document.CommandMeta, Meta: document.Meta{Kind: document.MetaComment, Comment: comment}})
		return nil
	}
}

func joinRest(fields []string) string {
	if len(fields) <= 1 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// parseBfcStatement parses the tail of a `0 BFC ...` line and, when it
// establishes the document's certification (CERTIFY/NOCERTIFY), updates
// doc.Bfc as a side effect.
func parseBfcStatement(doc *document.Document, fields []string, lineNo int) (document.BfcStatement, error) {
	if len(fields) == 0 {
		return document.BfcStatement{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.InvalidBfcStatement, Detail: "empty BFC statement"}
	}

	switch strings.ToUpper(fields[0]) {
	case "NOCERTIFY":
		doc.Bfc = document.BfcCertification{Kind: document.NoCertify}
		return document.BfcStatement{Kind: document.BfcNoClip}, nil
	case "CERTIFY":
		winding := common.CCW
		if len(fields) > 1 {
			w, err := parseWindingKeyword(fields[1], lineNo)
			if err != nil {
				return document.BfcStatement{}, err
			}
			winding = w
		}
		doc.Bfc = document.BfcCertification{Kind: document.Certify, Winding: winding}
		return document.BfcStatement{Kind: document.BfcWinding, Winding: winding}, nil
	case "CW":
		return document.BfcStatement{Kind: document.BfcWinding, Winding: common.CW}, nil
	case "CCW":
		return document.BfcStatement{Kind: document.BfcWinding, Winding: common.CCW}, nil
	case "CLIP":
		if len(fields) > 1 {
			w, err := parseWindingKeyword(fields[1], lineNo)
			if err != nil {
				return document.BfcStatement{}, err
			}
			return document.BfcStatement{Kind: document.BfcClip, Winding: w, HasWinding: true}, nil
		}
		return document.BfcStatement{Kind: document.BfcClip}, nil
	case "NOCLIP":
		return document.BfcStatement{Kind: document.BfcNoClip}, nil
	case "INVERTNEXT":
		return document.BfcStatement{Kind: document.BfcInvertNext}, nil
	default:
		return document.BfcStatement{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.InvalidBfcStatement, Detail: fields[0]}
	}
}

func parseWindingKeyword(tok string, lineNo int) (common.Winding, error) {
	switch strings.ToUpper(tok) {
	case "CW":
		return common.CW, nil
	case "CCW":
		return common.CCW, nil
	default:
		return 0, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.InvalidBfcStatement, Detail: tok}
	}
}

func parsePartReference(fields []string, lineNo int) (document.PartReference, error) {
	// color x y z a b c d e f g h i name
	if len(fields) < 14 {
		return document.PartReference{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.EndOfLine, Detail: "part reference"}
	}

	col, err := parseColorToken(fields[0], lineNo)
	if err != nil {
		return document.PartReference{}, err
	}
	nums, err := parseFloats(fields[1:13], lineNo)
	if err != nil {
		return document.PartReference{}, err
	}
	name := strings.Join(fields[13:], " ")

	return document.PartReference{
		Color:  col,
		Matrix: buildMatrix(nums),
		Name:   common.NewPartAlias(name),
	}, nil
}

// buildMatrix assembles a column-major Matrix4 from the 12 LDraw tokens
// (translation x,y,z then row-major rotation/scale a..i).
func buildMatrix(nums []float32) common.Matrix4 {
	x, y, z := nums[0], nums[1], nums[2]
	a, b, c := nums[3], nums[4], nums[5]
	d, e, f := nums[6], nums[7], nums[8]
	g, h, ii := nums[9], nums[10], nums[11]

	var m common.Matrix4
	m[0], m[4], m[8], m[12] = a, b, c, x
	m[1], m[5], m[9], m[13] = d, e, f, y
	m[2], m[6], m[10], m[14] = g, h, ii, z
	m[3], m[7], m[11], m[15] = 0, 0, 0, 1
	return m
}

func parseLine(fields []string, lineNo int) (document.Line, error) {
	if len(fields) < 7 {
		return document.Line{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.EndOfLine, Detail: "line"}
	}
	col, err := parseColorToken(fields[0], lineNo)
	if err != nil {
		return document.Line{}, err
	}
	nums, err := parseFloats(fields[1:7], lineNo)
	if err != nil {
		return document.Line{}, err
	}
	return document.Line{Color: col, A: vec3(nums[0:3]), B: vec3(nums[3:6])}, nil
}

func parseTriangle(fields []string, lineNo int) (document.Triangle, error) {
	if len(fields) < 10 {
		return document.Triangle{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.EndOfLine, Detail: "triangle"}
	}
	col, err := parseColorToken(fields[0], lineNo)
	if err != nil {
		return document.Triangle{}, err
	}
	nums, err := parseFloats(fields[1:10], lineNo)
	if err != nil {
		return document.Triangle{}, err
	}
	return document.Triangle{Color: col, A: vec3(nums[0:3]), B: vec3(nums[3:6]), C: vec3(nums[6:9])}, nil
}

func parseQuad(fields []string, lineNo int) (document.Quad, error) {
	if len(fields) < 13 {
		return document.Quad{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.EndOfLine, Detail: "quad"}
	}
	col, err := parseColorToken(fields[0], lineNo)
	if err != nil {
		return document.Quad{}, err
	}
	nums, err := parseFloats(fields[1:13], lineNo)
	if err != nil {
		return document.Quad{}, err
	}
	return document.Quad{Color: col, A: vec3(nums[0:3]), B: vec3(nums[3:6]), C: vec3(nums[6:9]), D: vec3(nums[9:12])}, nil
}

func parseOptionalLine(fields []string, lineNo int) (document.OptionalLine, error) {
	if len(fields) < 13 {
		return document.OptionalLine{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.EndOfLine, Detail: "optional line"}
	}
	col, err := parseColorToken(fields[0], lineNo)
	if err != nil {
		return document.OptionalLine{}, err
	}
	nums, err := parseFloats(fields[1:13], lineNo)
	if err != nil {
		return document.OptionalLine{}, err
	}
	return document.OptionalLine{Color: col, A: vec3(nums[0:3]), B: vec3(nums[3:6]), C: vec3(nums[6:9]), D: vec3(nums[9:12])}, nil
}

func vec3(n []float32) common.Vector3 {
	return common.Vector3{X: n[0], Y: n[1], Z: n[2]}
}

func parseFloats(fields []string, lineNo int) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.InvalidToken, Detail: f}
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseColorToken parses a color code token (decimal, or hex with a "0x"
// prefix) into an Unresolved color reference; resolution against a catalog
// happens later via Reference.ResolveSelf.
func parseColorToken(tok string, lineNo int) (color.Reference, error) {
	var v uint64
	var err error
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		v, err = strconv.ParseUint(tok[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(tok, 10, 32)
	}
	if err != nil {
		return color.Reference{}, &ldrawerr.ParseError{Line: lineNo, Reason: ldrawerr.InvalidToken, Detail: tok}
	}
	return color.Unresolved(uint32(v)), nil
}

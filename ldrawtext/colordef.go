package ldrawtext

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/ldrawerr"
)

//go:embed assets/ldconfig_minimal.ldr
var defaultCatalogSource []byte

// DefaultCatalog parses the embedded minimal color-definition asset,
// providing a usable Catalog without requiring an external LDraw install —
// the same role the teacher's embedded WGSL shader sources play for
// bundled-but-overridable defaults.
func DefaultCatalog() (color.Catalog, error) {
	return ParseColorDefinition(strings.NewReader(string(defaultCatalogSource)))
}

// ParseColorDefinition parses a `!COLOUR` color-definition file (the
// contents of LDConfig.ldr) into a Catalog.
//
// Grammar per line (after the leading "0"):
//
//	!COLOUR name CODE n VALUE #rrggbb EDGE #rrggbb [ALPHA a] [LUMINANCE l]
//	  [CHROME|PEARLESCENT|METAL|RUBBER|MATTE_METALLIC]
//	  [MATERIAL GLITTER|SPECKLE VALUE #rrggbb [params]]
//
// Lines that are not `!COLOUR` headers are ignored.
func ParseColorDefinition(r io.Reader) (color.Catalog, error) {
	catalog := make(color.Catalog)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "0" || strings.ToUpper(fields[1]) != "!COLOUR" {
			continue
		}

		c, err := parseColorLine(fields[2:], lineNo)
		if err != nil {
			return nil, err
		}
		catalog[c.Code] = c
	}
	if err := scanner.Err(); err != nil {
		return nil, &ldrawerr.IoError{Inner: err}
	}

	return catalog, nil
}

func parseColorLine(fields []string, lineNo int) (color.Color, error) {
	if len(fields) == 0 {
		return color.Color{}, &ldrawerr.ColorDefinitionError{
			Reason: ldrawerr.ColorDefinitionParse,
			Line:   lineNo,
			Inner:  fmt.Errorf("missing color name"),
		}
	}

	c := color.Color{Name: fields[0], Finish: color.Finish{Kind: color.FinishPlastic}}

	i := 1
	for i < len(fields) {
		kw := strings.ToUpper(fields[i])
		switch kw {
		case "CODE":
			v, err := requireUint(fields, &i, lineNo, "CODE")
			if err != nil {
				return color.Color{}, err
			}
			c.Code = v
		case "VALUE":
			v, err := requireHexColor(fields, &i, lineNo, "VALUE")
			if err != nil {
				return color.Color{}, err
			}
			c.Fill = v
		case "EDGE":
			v, err := requireHexColor(fields, &i, lineNo, "EDGE")
			if err != nil {
				return color.Color{}, err
			}
			c.Edge = v
		case "ALPHA":
			v, err := requireUint(fields, &i, lineNo, "ALPHA")
			if err != nil {
				return color.Color{}, err
			}
			c.Fill.A = uint8(v)
		case "LUMINANCE":
			v, err := requireUint(fields, &i, lineNo, "LUMINANCE")
			if err != nil {
				return color.Color{}, err
			}
			c.Luminance = uint8(v)
		case "CHROME":
			c.Finish = color.Finish{Kind: color.FinishChrome}
			i++
		case "PEARLESCENT":
			c.Finish = color.Finish{Kind: color.FinishPearlescent}
			i++
		case "RUBBER":
			c.Finish = color.Finish{Kind: color.FinishRubber}
			i++
		case "MATTE_METALLIC":
			c.Finish = color.Finish{Kind: color.FinishMatteMetallic}
			i++
		case "METAL":
			c.Finish = color.Finish{Kind: color.FinishMetal}
			i++
		case "MATERIAL":
			i++
			finish, consumed, err := parseMaterialClause(fields[i:], lineNo)
			if err != nil {
				return color.Color{}, err
			}
			c.Finish = finish
			i += consumed
		default:
			return color.Color{}, &ldrawerr.ColorDefinitionError{
				Reason:  ldrawerr.UnknownMaterial,
				Line:    lineNo,
				Keyword: fields[i],
			}
		}
	}

	return c, nil
}

// parseMaterialClause parses the tail of a `MATERIAL GLITTER|SPECKLE VALUE
// #rrggbb [params]` clause. Returns the number of fields consumed from the
// slice it was given.
func parseMaterialClause(fields []string, lineNo int) (color.Finish, int, error) {
	if len(fields) == 0 {
		return color.Finish{}, 0, &ldrawerr.ColorDefinitionError{
			Reason: ldrawerr.ColorDefinitionParse,
			Line:   lineNo,
			Inner:  fmt.Errorf("MATERIAL requires GLITTER or SPECKLE"),
		}
	}

	kind := strings.ToUpper(fields[0])
	if kind != "GLITTER" && kind != "SPECKLE" {
		return color.Finish{}, 0, &ldrawerr.ColorDefinitionError{
			Reason:  ldrawerr.UnknownMaterial,
			Line:    lineNo,
			Keyword: fields[0],
		}
	}

	i := 1
	var value color.Rgba
	var luminance uint8
	var fraction, vfraction float32
	var size uint32
	var minSize, maxSize float32
	haveVFraction := false

	for i < len(fields) {
		kw := strings.ToUpper(fields[i])
		switch kw {
		case "VALUE":
			v, err := requireHexColor(fields, &i, lineNo, "VALUE")
			if err != nil {
				return color.Finish{}, 0, err
			}
			value = v
		case "ALPHA":
			v, err := requireUint(fields, &i, lineNo, "ALPHA")
			if err != nil {
				return color.Finish{}, 0, err
			}
			value.A = uint8(v)
		case "LUMINANCE":
			v, err := requireUint(fields, &i, lineNo, "LUMINANCE")
			if err != nil {
				return color.Finish{}, 0, err
			}
			luminance = uint8(v)
		case "FRACTION":
			v, err := requireFloat(fields, &i, lineNo, "FRACTION")
			if err != nil {
				return color.Finish{}, 0, err
			}
			fraction = v
		case "VFRACTION":
			v, err := requireFloat(fields, &i, lineNo, "VFRACTION")
			if err != nil {
				return color.Finish{}, 0, err
			}
			vfraction = v
			haveVFraction = true
		case "SIZE":
			v, err := requireUint(fields, &i, lineNo, "SIZE")
			if err != nil {
				return color.Finish{}, 0, err
			}
			size = v
		case "MINSIZE":
			v, err := requireFloat(fields, &i, lineNo, "MINSIZE")
			if err != nil {
				return color.Finish{}, 0, err
			}
			minSize = v
		case "MAXSIZE":
			v, err := requireFloat(fields, &i, lineNo, "MAXSIZE")
			if err != nil {
				return color.Finish{}, 0, err
			}
			maxSize = v
		default:
			// Not a recognized parameter keyword: stop consuming, let the
			// caller treat the remainder as the next top-level keyword.
			return finishFromMaterial(kind, value, luminance, fraction, vfraction, haveVFraction, size, minSize, maxSize), i, nil
		}
	}

	return finishFromMaterial(kind, value, luminance, fraction, vfraction, haveVFraction, size, minSize, maxSize), i, nil
}

func finishFromMaterial(kind string, value color.Rgba, luminance uint8, fraction, vfraction float32, haveVFraction bool, size uint32, minSize, maxSize float32) color.Finish {
	if kind == "GLITTER" {
		return color.Finish{
			Kind: color.FinishCustomGlitter,
			Glitter: &color.MaterialGlitter{
				Value: value, Luminance: luminance, Fraction: fraction,
				VFraction: vfraction, Size: size, MinSize: minSize, MaxSize: maxSize,
			},
		}
	}
	_ = haveVFraction // SPECKLE has no VFRACTION field per spec §6.2
	return color.Finish{
		Kind: color.FinishCustomSpeckle,
		Speckle: &color.MaterialSpeckle{
			Value: value, Luminance: luminance, Fraction: fraction,
			Size: size, MinSize: minSize, MaxSize: maxSize,
		},
	}
}

func requireUint(fields []string, i *int, lineNo int, keyword string) (uint32, error) {
	*i++
	if *i >= len(fields) {
		return 0, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s requires a value", keyword)}
	}
	v, err := strconv.ParseUint(fields[*i], 10, 32)
	if err != nil {
		return 0, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s: %w", keyword, err)}
	}
	*i++
	return uint32(v), nil
}

func requireFloat(fields []string, i *int, lineNo int, keyword string) (float32, error) {
	*i++
	if *i >= len(fields) {
		return 0, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s requires a value", keyword)}
	}
	v, err := strconv.ParseFloat(fields[*i], 32)
	if err != nil {
		return 0, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s: %w", keyword, err)}
	}
	*i++
	return float32(v), nil
}

func requireHexColor(fields []string, i *int, lineNo int, keyword string) (color.Rgba, error) {
	*i++
	if *i >= len(fields) {
		return color.Rgba{}, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s requires a value", keyword)}
	}
	tok := strings.TrimPrefix(fields[*i], "#")
	v, err := strconv.ParseUint(tok, 16, 32)
	if err != nil {
		return color.Rgba{}, &ldrawerr.ColorDefinitionError{Reason: ldrawerr.ColorDefinitionParse, Line: lineNo, Inner: fmt.Errorf("%s: %w", keyword, err)}
	}
	*i++
	return color.RgbaFromValue(0xff000000 | uint32(v)), nil
}

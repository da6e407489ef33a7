package ldrawtext

import (
	"errors"
	"strings"
	"testing"

	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/ldrawerr"
)

func TestParseDocumentSinglePart(t *testing.T) {
	input := `0 Test Part
0 Name: test.dat
0 Author: nobody
0 BFC CERTIFY CCW
1 16 0 0 0 1 0 0 0 1 0 0 0 1 sub.dat
3 16 0 0 0 1 0 0 0 1 0
`
	doc, err := ParseDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.Name != "test.dat" {
		t.Fatalf("Name = %q, want test.dat", doc.Name)
	}
	if doc.Description != "Test Part" {
		t.Fatalf("Description = %q, want %q", doc.Description, "Test Part")
	}
	certified, ok := doc.Bfc.IsCertified()
	if !ok || !certified {
		t.Fatalf("Bfc.IsCertified() = %v, %v, want true, true", certified, ok)
	}
	if len(doc.IterRefs()) != 1 {
		t.Fatalf("expected 1 part reference, got %d", len(doc.IterRefs()))
	}
	if len(doc.IterTriangles()) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(doc.IterTriangles()))
	}
}

func TestParseDocumentRejectsMultipart(t *testing.T) {
	input := "0 body\n0 FILE sub.dat\n1 16 0 0 0 1 0 0 0 1 0 0 0 1 foo.dat\n"
	_, err := ParseDocument(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected UnexpectedMultipart error")
	}
	var perr *ldrawerr.ParseError
	if !errors.As(err, &perr) || perr.Reason != ldrawerr.UnexpectedMultipart {
		t.Fatalf("error = %v, want UnexpectedMultipart", err)
	}
}

func TestParseMultipartDocumentSplitsFileSections(t *testing.T) {
	input := `0 Main Model
0 Name: main.ldr
1 16 0 0 0 1 0 0 0 1 0 0 0 1 1-sub.dat

0 FILE 1-sub.dat
0 sub description
3 16 0 0 0 1 0 0 0 1 0
`
	doc, err := ParseMultipartDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMultipartDocument() error = %v", err)
	}
	if doc.Body.Name != "main.ldr" {
		t.Fatalf("Body.Name = %q, want main.ldr", doc.Body.Name)
	}
	sub, ok := doc.GetSubpart(common.NewPartAlias("1-sub.dat"))
	if !ok {
		t.Fatal("expected sub-part 1-sub.dat to be present")
	}
	if len(sub.IterTriangles()) != 1 {
		t.Fatalf("sub-part should contain 1 triangle, got %d", len(sub.IterTriangles()))
	}
}

func TestParsePartReferenceMatrix(t *testing.T) {
	// translation (10,20,30), identity rotation.
	line := "1 16 10 20 30 1 0 0 0 1 0 0 0 1 box.dat"
	fields := strings.Fields(line)
	ref, err := parsePartReference(fields[1:], 1)
	if err != nil {
		t.Fatalf("parsePartReference() error = %v", err)
	}
	if ref.Name.String() != "box.dat" {
		t.Fatalf("Name = %q, want box.dat", ref.Name.String())
	}

	got := ref.Matrix.TransformPoint(common.Vector3{})
	want := common.Vector3{X: 10, Y: 20, Z: 30}
	if got != want {
		t.Fatalf("TransformPoint(origin) = %+v, want %+v", got, want)
	}
}

func TestParseColorTokenHexAndDecimal(t *testing.T) {
	dec, err := parseColorToken("16", 1)
	if err != nil || dec.Code() != 16 {
		t.Fatalf("parseColorToken(16) = %+v, %v", dec, err)
	}
	hex, err := parseColorToken("0x2FF0000", 1)
	if err != nil || hex.Code() != 0x2FF0000 {
		t.Fatalf("parseColorToken(0x2FF0000) = %+v, %v", hex, err)
	}
}

func TestParseBfcNoCertify(t *testing.T) {
	input := "0 BFC NOCERTIFY\n3 16 0 0 0 1 0 0 0 1 0\n"
	doc, err := ParseDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	certified, ok := doc.Bfc.IsCertified()
	if !ok || certified {
		t.Fatalf("Bfc.IsCertified() = %v, %v, want false, true", certified, ok)
	}
}

func TestParseLineRequiresEnoughTokens(t *testing.T) {
	_, err := parseLine([]string{"16", "0", "0"}, 5)
	if err == nil {
		t.Fatal("expected an EndOfLine parse error")
	}
	pe, ok := err.(*ldrawerr.ParseError)
	if !ok || pe.Reason != ldrawerr.EndOfLine {
		t.Fatalf("error = %v, want EndOfLine", err)
	}
}

func TestParseFloatsInvalidToken(t *testing.T) {
	_, err := parseFloats([]string{"1.0", "notanumber"}, 7)
	if err == nil {
		t.Fatal("expected an InvalidToken parse error")
	}
	pe, ok := err.(*ldrawerr.ParseError)
	if !ok || pe.Reason != ldrawerr.InvalidToken {
		t.Fatalf("error = %v, want InvalidToken", err)
	}
}

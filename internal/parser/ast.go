package parser

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is an ATX or setext heading found in markdown content.
type Heading struct {
	Level int
	Text  string
}

// ExtractHeadings uses a markdown AST to find all headings in document order.
func ExtractHeadings(source []byte) ([]Heading, error) {
	var headings []Heading
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headings = append(headings, Heading{
			Level: heading.Level,
			Text:  string(heading.Text(source)),
		})
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return headings, nil
}

// FirstHeading returns the first heading in source, if any.
func FirstHeading(source []byte) (Heading, bool, error) {
	headings, err := ExtractHeadings(source)
	if err != nil {
		return Heading{}, false, err
	}
	if len(headings) == 0 {
		return Heading{}, false, nil
	}
	return headings[0], true, nil
}

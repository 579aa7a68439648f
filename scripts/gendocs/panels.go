package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/connector"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/internal/ui/features/analyser"
	"github.com/leapstack-labs/bankdash/internal/ui/features/configuration"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// generatePanelDocs renders every panel with its built-in data and writes the
// markdown equivalent, so the docs show what a fresh dashboard displays.
func generatePanelDocs(outDir string) error {
	log.Printf("Generating panel docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cat := catalog.Default()
	for _, panel := range cat.Panels() {
		p := provider.New(provider.Config{
			Fallback: func() []core.Module { return cat.Fallback(panel.ID) },
		})
		view := analyser.PanelView{Panel: panel, Snapshot: p.Snapshot()}
		if err := writePanelDoc(outDir, string(panel.ID), panel.Title,
			analyser.PanelFragment(view), analyser.FragmentID(view)); err != nil {
			return err
		}
	}

	return writePanelDoc(outDir, "configuration", configuration.Title,
		configuration.Fragment(connector.State{}), configuration.FragmentID)
}

func writePanelDoc(outDir, name, title string, c templ.Component, fragmentID string) error {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	body, err := panelMarkdown(buf.String(), fragmentID)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", name, err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter(title, "The "+title+" as rendered without remote data")
	w.GeneratedMarker()
	w.Text(body)
	w.Text("\n")

	log.Printf("  Generated %s.md", name)
	return os.WriteFile(filepath.Join(outDir, name+".md"), w.Bytes(), 0600)
}

// panelMarkdown converts the element with the given id to markdown. Form
// controls are dropped; they carry no text.
func panelMarkdown(fragment, id string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	root := findByID(doc, id)
	if root == nil {
		return "", fmt.Errorf("element #%s not found", id)
	}
	stripControls(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}

	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func stripControls(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.DataAtom {
		case atom.Input, atom.Select, atom.Script:
			n.RemoveChild(c)
		default:
			stripControls(c)
		}
		c = next
	}
}

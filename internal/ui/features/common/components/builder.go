// Package components provides the templ components shared by every page:
// the page layout, module tiles, status chips and banners.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Builder writes markup and remembers the first write error, so components
// can emit a sequence of writes and check once at the end.
type Builder struct {
	w   io.Writer
	err error
}

// NewBuilder returns a Builder writing to w.
func NewBuilder(w io.Writer) *Builder {
	return &Builder{w: w}
}

// Raw writes s unescaped.
func (b *Builder) Raw(s string) *Builder {
	if b.err == nil {
		_, b.err = io.WriteString(b.w, s)
	}
	return b
}

// Text writes s as escaped HTML text.
func (b *Builder) Text(s string) *Builder {
	return b.Raw(templ.EscapeString(s))
}

// Open writes a start tag. attrs are name/value pairs; an empty value writes
// a bare boolean attribute.
func (b *Builder) Open(tag string, attrs ...string) *Builder {
	b.Raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			b.Raw(" " + attrs[i])
			continue
		}
		b.Raw(" " + attrs[i] + `="` + templ.EscapeString(attrs[i+1]) + `"`)
	}
	return b.Raw(">")
}

// Close writes an end tag.
func (b *Builder) Close(tag string) *Builder {
	return b.Raw("</" + tag + ">")
}

// Element writes a start tag, escaped text and the end tag.
func (b *Builder) Element(tag, text string, attrs ...string) *Builder {
	return b.Open(tag, attrs...).Text(text).Close(tag)
}

// Component renders c in place.
func (b *Builder) Component(ctx context.Context, c templ.Component) *Builder {
	if b.err == nil && c != nil {
		b.err = c.Render(ctx, b.w)
	}
	return b
}

// Err returns the first error encountered.
func (b *Builder) Err() error {
	return b.err
}

// Func adapts a builder callback to a templ component.
func Func(fn func(ctx context.Context, b *Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := NewBuilder(w)
		fn(ctx, b)
		return b.Err()
	})
}

// Class joins class names, skipping empty ones.
func Class(names ...string) string {
	out := ""
	for _, n := range names {
		if n == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += n
	}
	return out
}

// If returns v when cond holds, otherwise "".
func If(cond bool, v string) string {
	if cond {
		return v
	}
	return ""
}

package markdown_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yaklabco/mdsite/pkg/inline"
	"github.com/yaklabco/mdsite/pkg/markdown"
)

func FuzzCompile(f *testing.F) {
	f.Add("")
	f.Add("# Title\n\nSome **bold** and _italic_ text")
	f.Add("```\ncode\n```")
	f.Add("> quoted\n> again")
	f.Add("- a\n* b\n- c")
	f.Add("1. one\n2. two\n3. three")
	f.Add("[link](/x) ![img](/y.png)")
	f.Add("unbalanced **bold")
	f.Add("\r\n\r\n   \n")

	f.Fuzz(func(t *testing.T, document string) {
		root, err := markdown.Compile(document)
		if err != nil {
			if root != nil {
				t.Fatal("Compile returned a tree alongside an error")
			}

			var blockErr *markdown.BlockError
			if !errors.As(err, &blockErr) {
				t.Fatalf("error is not a BlockError: %v", err)
			}
			if !errors.Is(err, inline.ErrMalformedInlineMarkup) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}

		html, err := root.Render()
		if err != nil {
			t.Fatalf("Render failed on compiled tree: %v", err)
		}
		if !strings.HasPrefix(html, "<div>") || !strings.HasSuffix(html, "</div>") {
			t.Errorf("output not wrapped in div: %q", html)
		}
	})
}

// Package markdown handles the link side of documentation text: pulling
// candidate intra-doc link targets out of markdown, and rewriting
// resolved destinations when documents are served.
package markdown

import (
	"regexp"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

func parse(src string) ast.Node {
	return gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))
}

// LinkTargets collects candidate link destinations from doc text:
// explicit destinations of inline and reference links found in the
// AST, plus shortcut references like [`Value::get`] or [Option] that
// carry no destination of their own. Duplicates are dropped, first
// appearance wins. Callers decide which candidates actually resolve
// to documented items.
func LinkTargets(src string) []string {
	if src == "" {
		return nil
	}

	seen := make(map[string]bool)
	var targets []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}

	ast.WalkFunc(parse(src), func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			add(string(link.Destination))
		}
		return ast.GoToNext
	})

	for _, m := range shortcutRe.FindAllStringSubmatch(src, -1) {
		// A trailing ( or [ means this bracket is the text half of a
		// full link, not a shortcut reference.
		if m[2] != "" {
			continue
		}
		add(m[1])
	}

	return targets
}

// shortcutRe matches [`path`] and [path] brackets. The optional
// trailing delimiter distinguishes real shortcut references from the
// text portion of [text](dest) and [text][ref] links.
var shortcutRe = regexp.MustCompile("\\[`?([A-Za-z_][A-Za-z0-9_:!()]*)`?\\]([(\\[])?")

// pathRe validates a cleaned-up candidate as a :: separated item path.
var pathRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)

// CleanPath normalizes a link candidate into a plain item path:
// backticks, a method-call suffix and a macro bang are stripped. The
// second return is false when the remainder does not look like an item
// path at all (URLs, anchors, prose).
func CleanPath(target string) (string, bool) {
	p := strings.Trim(target, "`")
	p = strings.TrimSuffix(p, "()")
	p = strings.TrimSuffix(p, "!")
	if !pathRe.MatchString(p) {
		return "", false
	}
	return p, true
}

// RewriteLinks replaces markdown link destinations according to the
// resolved map. Only destinations that actually occur as links in the
// parsed text are touched, so plain prose mentioning a target string
// stays intact.
func RewriteLinks(src string, resolved map[string]string) string {
	if len(resolved) == 0 {
		return src
	}

	needed := make(map[string]string)
	ast.WalkFunc(parse(src), func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if to, ok := resolved[dest]; ok {
				needed[dest] = to
			}
		}
		return ast.GoToNext
	})
	if len(needed) == 0 {
		return src
	}

	// Inline links: [text](dest)
	pairs := make([]string, 0, len(needed)*2)
	for from, to := range needed {
		pairs = append(pairs, "]("+from+")", "]("+to+")")
	}
	out := strings.NewReplacer(pairs...).Replace(src)

	// Reference definitions: [label]: dest
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		label, rest, ok := strings.Cut(line, "]:")
		if !ok || !strings.HasPrefix(strings.TrimSpace(label), "[") {
			continue
		}
		dest := strings.TrimSpace(rest)
		if to, ok := needed[dest]; ok {
			lines[i] = label + "]: " + to
		}
	}
	return strings.Join(lines, "\n")
}

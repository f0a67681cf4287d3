package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"shale/internal/ast"
	"shale/internal/source"
)

// FormatASTPretty prints the file as an indented tree:
//
//	File main.shl
//	└─ Fn main (1:1)
//	   └─ body: Block (1:11)
func FormatASTPretty(w io.Writer, b *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := BuildAST(b, fileID)
	if err != nil {
		return err
	}
	header := "File"
	if fs != nil && fs.Len() > int(root.Span.File) {
		header += " " + fs.Get(root.Span.File).Path
	}
	var sb strings.Builder
	sb.WriteString(header + "\n")
	for i := range root.Children {
		writeTreeNode(&sb, &root.Children[i], "", i == len(root.Children)-1, fs)
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func writeTreeNode(sb *strings.Builder, n *ASTNodeOutput, prefix string, last bool, fs *source.FileSet) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	sb.WriteString(prefix + branch + nodeLabel(n, fs) + "\n")
	for i := range n.Children {
		writeTreeNode(sb, &n.Children[i], prefix+next, i == len(n.Children)-1, fs)
	}
}

func nodeLabel(n *ASTNodeOutput, fs *source.FileSet) string {
	var sb strings.Builder
	if n.Role != "" {
		sb.WriteString(n.Role + ": ")
	}
	sb.WriteString(n.Type)
	if n.Text != "" {
		sb.WriteString(" " + n.Text)
	}
	if fs != nil && fs.Len() > int(n.Span.File) {
		start, _ := fs.Resolve(n.Span)
		fmt.Fprintf(&sb, " (%d:%d)", start.Line, start.Col)
	}
	return sb.String()
}

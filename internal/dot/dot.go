// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package dot serializes the concrete parse tree in the Graphviz DOT
// directed-graph format for offline rendering.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/JohnAzizJA/Python-Compiler/internal/ast"
)

// Write emits the tree rooted at root as a digraph.  Nodes are numbered in
// depth-first preorder starting at 0; each node line precedes the edge lines
// of its subtree.
func Write(w io.Writer, root *ast.Node) error {
	if root == nil {
		return errors.New("no parse tree to serialize")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph ParseTree {")
	fmt.Fprintln(bw, `  node [shape=box, fontname="Arial", fontsize=10];`)
	id := 0
	writeNode(bw, root, &id)
	fmt.Fprintln(bw, "}")
	return errors.Wrap(bw.Flush(), "writing DOT output")
}

func writeNode(w io.Writer, n *ast.Node, id *int) {
	my := *id
	*id++
	label := strings.ReplaceAll(n.Label(), `"`, `\"`)
	fmt.Fprintf(w, "  node%d [label=\"%s\"];\n", my, label)
	for _, child := range n.Children {
		childID := *id
		writeNode(w, child, id)
		fmt.Fprintf(w, "  node%d -> node%d;\n", my, childID)
	}
}

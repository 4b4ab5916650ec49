// Copyright 2021 Molecula Corp. All rights reserved.
package parser

// Visitor is an interface implemented by anything needed to act on nodes walked
// during a node traversal. A Visitor's Visit method is invoked for each node
// encountered by Walk. If the result visitor w is not nil, Walk visits each of
// the children of node with the visitor w, followed by a call of
// w.VisitEnd(node).
type Visitor interface {
	Visit(node Node) (w Visitor, n Node, err error)
	VisitEnd(node Node) (Node, error)
}

// Walk traverses an expression tree in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the non-nil children of node, followed by a call of
// w.VisitEnd(node).
func Walk(v Visitor, node Node) (Node, error) {
	return walk(v, node)
}

func walk(v Visitor, node Node) (_ Node, err error) {
	// Visit the node itself
	if v, node, err = v.Visit(node); err != nil {
		return node, err
	} else if v == nil {
		return node, nil
	}

	// Visit node's children.
	switch n := node.(type) {
	case *CastExpr:
		if err := walkExpr(v, &n.X); err != nil {
			return node, err
		}

	case *ParenExpr:
		if err := walkExpr(v, &n.X); err != nil {
			return node, err
		}

	case *ColumnRef:
		if err := walkIdent(v, &n.Table); err != nil {
			return node, err
		}
		if err := walkIdent(v, &n.Column); err != nil {
			return node, err
		}

	case *Call:
		if err := walkIdent(v, &n.Name); err != nil {
			return node, err
		}
		if err := walkExprList(v, n.Args); err != nil {
			return node, err
		}
	}

	// Revisit original node after its children have been processed.
	return v.VisitEnd(node)
}

// VisitFunc represents a function type that implements Visitor.
// Only executes on node entry.
type VisitFunc func(Node) (Node, error)

// Visit executes fn. Walk visits node children if fn returns true.
func (fn VisitFunc) Visit(node Node) (Visitor, Node, error) {
	node, err := fn(node)
	if err != nil {
		return nil, nil, err
	}
	return fn, node, nil
}

// VisitEnd is a no-op.
func (fn VisitFunc) VisitEnd(node Node) (Node, error) { return node, nil }

// VisitEndFunc represents a function type that implements Visitor.
// Only executes on node exit, so children are seen before their parents.
type VisitEndFunc func(Node) (Node, error)

// Visit is a no-op.
func (fn VisitEndFunc) Visit(node Node) (Visitor, Node, error) { return fn, node, nil }

// VisitEnd executes fn.
func (fn VisitEndFunc) VisitEnd(node Node) (Node, error) { return fn(node) }

func walkIdent(v Visitor, x **Ident) error {
	if *x == nil {
		return nil
	}
	if ident, err := walk(v, *x); err != nil {
		return err
	} else if ident != nil {
		*x = ident.(*Ident)
	} else {
		*x = nil
	}
	return nil
}

func walkExpr(v Visitor, x *Expr) error {
	if *x == nil {
		return nil
	}
	if other, err := walk(v, *x); err != nil {
		return err
	} else if other != nil {
		*x = other.(Expr)
	} else {
		*x = nil
	}
	return nil
}

func walkExprList(v Visitor, a []Expr) error {
	for i := range a {
		if err := walkExpr(v, &a[i]); err != nil {
			return err
		}
	}
	return nil
}

package vdom

import "fmt"

// Text creates a text node. Content is escaped during rendering.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node. The content is written verbatim,
// so it must never contain user input.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element. Accepts *VNode,
// []*VNode, string, and Component arguments; nils are dropped.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			node.appendChild(v)
		case []*VNode:
			for _, c := range v {
				node.appendChild(c)
			}
		case string:
			node.appendChild(Text(v))
		case Component:
			node.appendChild(&VNode{Kind: KindComponent, Comp: v})
		}
	}
	return node
}

// If returns node when condition holds, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns ifTrue when condition holds, ifFalse otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is If with lazy evaluation; fn runs only when condition holds.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to child nodes, dropping nils.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Key sets the reconciliation key. Non-string keys are formatted with
// fmt.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Nothing returns nil for explicit empty branches.
func Nothing() *VNode {
	return nil
}

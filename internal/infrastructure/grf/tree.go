package grf

// node is a line with its folded value and its subtree.
type node struct {
	line
	value    string
	children []*node
}

func (n *node) child(tag string) *node {
	for _, c := range n.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

func (n *node) childValue(tag string) string {
	if c := n.child(tag); c != nil {
		return c.value
	}
	return ""
}

// parseRecords builds the raw tree of level 0 records.
// Stray lines above level 0 with no record to belong to are dropped.
func parseRecords(s *scanner) ([]*node, error) {
	var records []*node
	for {
		l, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return records, nil
		}
		n, err := parseNode(s, l)
		if err != nil {
			return nil, err
		}
		if l.level == 0 {
			records = append(records, n)
		}
	}
}

// parseNode reads the subtree under l. CONT and CONC lines deeper than l
// that no child claims are folded into l's value in order.
func parseNode(s *scanner, l line) (*node, error) {
	n := &node{line: l, value: l.data}
	for {
		next, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return n, nil
		}
		if next.level <= l.level {
			s.unread()
			return n, nil
		}
		switch next.tag {
		case "CONT":
			n.value += "\n" + next.data
			continue
		case "CONC":
			n.value += next.data
			continue
		}
		child, err := parseNode(s, next)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
}

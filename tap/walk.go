package tap

// WalkFunc is called for each statement. path holds the names of the
// enclosing subtests, outermost first; unnamed subtests contribute "".
type WalkFunc func(path []string, s Statement) error

// Walk visits body in source order, descending into each subtest right
// after visiting it. It stops at the first error fn returns.
func Walk(body []Statement, fn WalkFunc) error {
	return walk(nil, body, fn)
}

func walk(path []string, body []Statement, fn WalkFunc) error {
	for _, s := range body {
		if err := fn(path, s); err != nil {
			return err
		}
		st, ok := s.(*Subtest)
		if !ok {
			continue
		}
		name := ""
		if st.Name != nil {
			name = *st.Name
		}
		inner := append(path[:len(path):len(path)], name)
		if err := walk(inner, st.Body, fn); err != nil {
			return err
		}
	}
	return nil
}

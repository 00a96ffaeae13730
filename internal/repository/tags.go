package repository

// tagIndex holds tag membership in both directions. Members are weak
// references by path; the repository purges a path from every tag in the
// same call that removes its node.
type tagIndex struct {
	order   []string
	members map[string][]string
	byPath  map[string][]string
}

func newTagIndex() *tagIndex {
	return &tagIndex{
		members: make(map[string][]string),
		byPath:  make(map[string][]string),
	}
}

// add puts path into tag, creating the tag on first use. It reports whether
// membership changed.
func (t *tagIndex) add(tag, path string) bool {
	members, ok := t.members[tag]
	if !ok {
		t.order = append(t.order, tag)
	}
	if contains(members, path) {
		return false
	}

	t.members[tag] = append(members, path)
	t.byPath[path] = append(t.byPath[path], tag)

	return true
}

// remove drops path from tag. A tag whose member set becomes empty is
// destroyed.
func (t *tagIndex) remove(tag, path string) bool {
	members, ok := t.members[tag]
	if !ok || !contains(members, path) {
		return false
	}

	members = without(members, path)
	if len(members) == 0 {
		delete(t.members, tag)
		t.order = without(t.order, tag)
	} else {
		t.members[tag] = members
	}

	tags := without(t.byPath[path], tag)
	if len(tags) == 0 {
		delete(t.byPath, path)
	} else {
		t.byPath[path] = tags
	}

	return true
}

// clear drops path from every tag it belongs to.
func (t *tagIndex) clear(path string) int {
	tags := append([]string(nil), t.byPath[path]...)
	for _, tag := range tags {
		t.remove(tag, path)
	}

	return len(tags)
}

// retain drops every member for which live returns false.
func (t *tagIndex) retain(live func(string) bool) []string {
	var dropped []string
	for path := range t.byPath {
		if !live(path) {
			dropped = append(dropped, path)
		}
	}
	for _, path := range dropped {
		t.clear(path)
	}

	return dropped
}

func (t *tagIndex) names() []string {
	return append([]string(nil), t.order...)
}

func (t *tagIndex) membersOf(tag string) []string {
	return append([]string(nil), t.members[tag]...)
}

func (t *tagIndex) tagsOf(path string) []string {
	return append([]string(nil), t.byPath[path]...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}

	return out
}

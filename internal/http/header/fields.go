package header

import "strings"

// fields keeps header lines in first-seen order with case-insensitive lookup.
type fields struct {
	list  []Field
	index map[string]int
}

func newFields(capacity int) fields {
	return fields{
		list:  make([]Field, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (f *fields) Set(key string, value string) {
	k := strings.ToLower(key)
	if i, ok := f.index[k]; ok {
		f.list[i].Value = value
		return
	}
	f.index[k] = len(f.list)
	f.list = append(f.list, Field{Name: key, Value: value})
}

func (f *fields) Add(key string, value string) {
	k := strings.ToLower(key)
	if _, ok := f.index[k]; !ok {
		f.index[k] = len(f.list)
	}
	f.list = append(f.list, Field{Name: key, Value: value})
}

func (f *fields) Value(key string) string {
	i, ok := f.index[strings.ToLower(key)]
	if !ok {
		return ""
	}
	return f.list[i].Value
}

func (f *fields) Fields() []Field {
	out := make([]Field, len(f.list))
	copy(out, f.list)
	return out
}

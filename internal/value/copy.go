package value

// Copy returns a deep copy of v. Lists and Records in the result share no
// backing storage with v; scalar kinds are returned as is.
func Copy(v Value) Value {
	switch val := v.(type) {
	case List:
		return val.Copy()
	case Record:
		return val.Copy()
	default:
		return v
	}
}

// Copy returns a deep copy of the list. A nil list stays nil.
func (l List) Copy() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, elem := range l {
		out[i] = Copy(elem)
	}
	return out
}

// Copy returns a deep copy of the record. A nil record stays nil.
func (rec Record) Copy() Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, elem := range rec {
		out[k] = Copy(elem)
	}
	return out
}

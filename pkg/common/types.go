package common

type Entry struct {
	Name string
	Size int64
}

// RecordLength is the number of archive bytes the entry occupies.
func (e Entry) RecordLength() int64 {
	return HeaderLength + e.Size
}

type BuildResult struct {
	ID          string
	ArchivePath string
	Added       []Entry
	Failures    []*EntryError
	Length      int64
}

type ListResult struct {
	ID          string
	ArchivePath string
	Entries     []Entry
}

// Empty reports whether the archive contained no records.
func (r *ListResult) Empty() bool {
	return len(r.Entries) == 0
}

type ExtractResult struct {
	ID          string
	ArchivePath string
	OutputPath  string
	Extracted   []Entry
	Missing     []string
	Failures    []*EntryError
}

// ExtractedNames returns the distinct extracted names in first-seen order.
func (r *ExtractResult) ExtractedNames() []string {
	seen := make(map[string]struct{}, len(r.Extracted))
	names := make([]string, 0, len(r.Extracted))
	for _, e := range r.Extracted {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	return names
}

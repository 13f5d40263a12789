package match

// Deduplicator keeps the records of one crawl session keyed by Key. The first
// record seen for a key wins; later duplicates are dropped.
type Deduplicator struct {
	seen    map[Key]struct{}
	records []Record
}

func NewDeduplicator(capacity int) *Deduplicator {
	if capacity < 0 {
		capacity = 0
	}
	return &Deduplicator{
		seen:    make(map[Key]struct{}, capacity),
		records: make([]Record, 0, capacity),
	}
}

// Add returns the records of batch whose key was not seen before, in batch order.
func (d *Deduplicator) Add(batch []Record) []Record {
	fresh := make([]Record, 0, len(batch))
	for _, item := range batch {
		key := item.Key()
		if _, ok := d.seen[key]; ok {
			continue
		}
		d.seen[key] = struct{}{}
		d.records = append(d.records, item)
		fresh = append(fresh, item)
	}
	return fresh
}

func (d *Deduplicator) Len() int {
	return len(d.records)
}

// Records returns a copy of all unique records in discovery order.
func (d *Deduplicator) Records() []Record {
	return append([]Record(nil), d.records...)
}

// Merge overlays newer onto older by Key. Entries of newer replace same-key
// entries of older in place; unseen keys are appended.
func Merge(older, newer []Record) []Record {
	out := make([]Record, 0, len(older)+len(newer))
	index := make(map[Key]int, len(older)+len(newer))
	for _, item := range older {
		if pos, ok := index[item.Key()]; ok {
			out[pos] = item
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	for _, item := range newer {
		if pos, ok := index[item.Key()]; ok {
			out[pos] = item
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}

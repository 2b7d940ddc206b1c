package runlog

// History is a fixed capacity FIFO of run records, oldest first. Pushing
// into a full history evicts the oldest record.
type History struct {
	capacity int
	records  []Record
}

// NewHistory returns an empty history. Capacities below one are raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity, records: make([]Record, 0, capacity)}
}

// Push appends record, evicting the oldest entry when full.
func (h *History) Push(record Record) {
	if len(h.records) == h.capacity {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, record)
}

// Records returns a copy of the retained records, oldest first.
func (h *History) Records() []Record {
	return append([]Record(nil), h.records...)
}

// Headers returns the header line of each retained record, oldest first.
func (h *History) Headers() []string {
	headers := make([]string, 0, len(h.records))
	for _, record := range h.records {
		headers = append(headers, record.Header())
	}
	return headers
}

// Len reports how many records are retained.
func (h *History) Len() int {
	return len(h.records)
}

// Capacity reports the maximum number of retained records.
func (h *History) Capacity() int {
	return h.capacity
}

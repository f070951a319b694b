package autoplay

const maxRecords = 32

// Record captures one posted intent.
type Record struct {
	Turn   int
	Seat   int
	Action Action
	Target *Target
	Error  string
}

// Memory keeps a ring of recent intents so a rejected move is not retried
// within the same turn.
type Memory struct {
	Records []Record
}

// Add appends a record, dropping the oldest beyond the cap.
func (m *Memory) Add(r Record) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Failed reports whether the same intent was rejected during the turn of the
// latest record.
func (m *Memory) Failed(a Action, t *Target) bool {
	if m == nil || len(m.Records) == 0 {
		return false
	}
	turn := m.Records[len(m.Records)-1].Turn
	for i := len(m.Records) - 1; i >= 0; i-- {
		r := m.Records[i]
		if r.Turn != turn {
			break
		}
		if r.Error != "" && r.Action == a && sameTarget(r.Target, t) {
			return true
		}
	}
	return false
}

// Failures counts rejected intents still in memory.
func (m *Memory) Failures() int {
	n := 0
	for _, r := range m.Records {
		if r.Error != "" {
			n++
		}
	}
	return n
}

func sameTarget(a, b *Target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

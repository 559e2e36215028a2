package internal

// Deduplicator drops messages whose id is already known. It is used to
// merge messages that arrived while a history was loading into that
// history, without touching the history itself.
type Deduplicator struct {
	seen map[string]bool
}

// NewDeduplicator creates a Deduplicator that already knows the ids of known
func NewDeduplicator(known []Message) *Deduplicator {
	d := &Deduplicator{seen: make(map[string]bool, len(known))}
	for _, msg := range known {
		if msg.ID != "" {
			d.seen[msg.ID] = true
		}
	}
	return d
}

// Deduplicate keeps the messages whose id has not been seen yet and
// remembers their ids. Messages without an id are always kept.
func (d *Deduplicator) Deduplicate(messages []Message) []Message {
	unique := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.ID != "" {
			if d.seen[msg.ID] {
				LogDebug("Dropping duplicate message %s", msg.ID)
				continue
			}
			d.seen[msg.ID] = true
		}
		unique = append(unique, msg)
	}
	return unique
}

// MergeHistory returns loaded exactly as the service sent it, followed by
// the local messages it does not already contain
func MergeHistory(loaded, local []Message) []Message {
	merged := make([]Message, 0, len(loaded)+len(local))
	merged = append(merged, loaded...)
	return append(merged, NewDeduplicator(loaded).Deduplicate(local)...)
}

package crm

// SOQL assembly helpers. The source enforces an expression size limit on IN
// lists, so large id sets are split into fixed-size batches upstream

import "strings"

// QuoteID escapes and single-quotes an identifier literal for an IN list
func QuoteID(id string) string {
	var b strings.Builder
	b.Grow(len(id) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(id); i++ {
		switch id[i] {
		case '\'', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(id[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// IDList formats ids for a SOQL IN clause: 'id1','id2','id3'
func IDList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = QuoteID(id)
	}
	return strings.Join(quoted, ",")
}

// BatchIDs splits ids into chunks of at most size (size <= 0 means one batch)
func BatchIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) <= size {
		if len(ids) == 0 {
			return nil
		}
		return [][]string{ids}
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}

// idsPlaceholder is the token a batched query template carries where the
// quoted id list is substituted per batch
const idsPlaceholder = "{ids}"

// expandIDs substitutes one batch of ids into a query template
func expandIDs(template string, batch []string) string {
	return strings.Replace(template, idsPlaceholder, IDList(batch), 1)
}

package engine

// bookEntry is an order resting in the book, waiting to be matched.
// Size is reduced in place as partial fills occur within a tick.
type bookEntry struct {
	price         float64
	seq           uint64
	size          int64
	participantID string
	tick          int64
}

// bidQueue orders entries by price-time priority for the buy side:
// higher price first, ties broken by arrival (lower sequence).
type bidQueue []bookEntry

func (q bidQueue) Len() int { return len(q) }

func (q bidQueue) Less(i, j int) bool {
	if q[i].price != q[j].price {
		return q[i].price > q[j].price
	}
	return q[i].seq < q[j].seq
}

func (q bidQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *bidQueue) Push(x any) { *q = append(*q, x.(bookEntry)) }

func (q *bidQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}

// askQueue orders entries by price-time priority for the sell side:
// lower price first, ties broken by arrival (lower sequence).
type askQueue []bookEntry

func (q askQueue) Len() int { return len(q) }

func (q askQueue) Less(i, j int) bool {
	if q[i].price != q[j].price {
		return q[i].price < q[j].price
	}
	return q[i].seq < q[j].seq
}

func (q askQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *askQueue) Push(x any) { *q = append(*q, x.(bookEntry)) }

func (q *askQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}

package bakery

// Less is the fairness comparator: it orders (ticket, participant) pairs by
// ticket first and participant id second. It is a strict total order over
// distinct participants, so two waiters can never each see the other as
// lower.
func Less(ta Ticket, a ID, tb Ticket, b ID) bool {
	if ta != tb {
		return ta < tb
	}
	return a < b
}

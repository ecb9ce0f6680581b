package orders

// Status is the order lifecycle state. Pending orders still compete for
// inventory through their holds; paid is the only state tickets can be
// issued from.
type Status string

const (
	StatusPending           Status = "pending"
	StatusPaid              Status = "paid"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

var orderTransitions = map[Status][]Status{
	StatusPending:           {StatusPaid, StatusFailed, StatusCancelled},
	StatusPaid:              {StatusRefunded, StatusPartiallyRefunded},
	StatusPartiallyRefunded: {StatusRefunded, StatusPartiallyRefunded},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

package payments

// Status is the payment state machine. The engine drives
// pending -> processing -> completed | failed itself; authorized and
// captured are recorded when the provider reports them on the way through.
type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusAuthorized        Status = "authorized"
	StatusCaptured          Status = "captured"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

var paymentTransitions = map[Status][]Status{
	StatusPending:           {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing:        {StatusAuthorized, StatusCaptured, StatusCompleted, StatusFailed, StatusCancelled},
	StatusAuthorized:        {StatusCaptured, StatusCompleted, StatusFailed, StatusCancelled},
	StatusCaptured:          {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:         {StatusRefunded, StatusPartiallyRefunded},
	StatusPartiallyRefunded: {StatusRefunded, StatusPartiallyRefunded},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no forward transition exists. Completed is not
// terminal in this sense (it can still be refunded) but it is final for the
// settlement flow; use IsSettled for that question.
func (s Status) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

// IsSettled reports whether the payment reached a final settlement outcome.
func (s Status) IsSettled() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded, StatusPartiallyRefunded:
		return true
	}
	return false
}

// confirmable lists the states the conditional completion UPDATE accepts.
var confirmable = []Status{StatusProcessing, StatusAuthorized, StatusCaptured}

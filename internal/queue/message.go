package queue

import "github.com/pgvanniekerk/ezpool/job"

// Kind identifies which variant a Message carries.
type Kind uint8

const (
	// KindWork marks a message carrying a job to execute.
	KindWork Kind = iota

	// KindTerminate marks a message telling the receiving worker to exit.
	KindTerminate
)

func (k Kind) String() string {
	switch k {
	case KindWork:
		return "work"
	case KindTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Message is the unit carried by a Queue. It is either a job to run or a
// terminate signal; Job is only set for KindWork.
type Message struct {
	Kind Kind
	Job  job.Job
}

// Work wraps j in a KindWork message.
func Work(j job.Job) Message {
	return Message{Kind: KindWork, Job: j}
}

// Terminate returns a KindTerminate message.
func Terminate() Message {
	return Message{Kind: KindTerminate}
}

// File: core/evcore/descriptor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CompletionDescriptor is a tagged variant describing where a finished
// AsyncOperation should be delivered. The weak references it carries are
// lookup-only: if the referent is gone, delivery is silently dropped,
// never an error.

package evcore

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/weakref"
)

// DescriptorTag identifies which CompletionDescriptor variant is active.
type DescriptorTag int

const (
	// Discard drops the operation on completion, no side effects.
	Discard DescriptorTag = iota
	// PostToHub posts the operation to a weakly-referenced hub.
	PostToHub
	// ResumeForkedThread resumes a weakly-referenced parked thread.
	ResumeForkedThread
)

func (t DescriptorTag) String() string {
	switch t {
	case Discard:
		return "discard"
	case PostToHub:
		return "post_to_hub"
	case ResumeForkedThread:
		return "resume_forked_thread"
	default:
		return "unknown"
	}
}

// CompletionDescriptor says how a finished operation reaches its consumer.
// Exactly one field set is meaningful, selected by Tag.
type CompletionDescriptor struct {
	Tag DescriptorTag

	// Valid when Tag == PostToHub.
	Hub        weakref.WeakRef[*Hub]
	SubmitInfo api.SubmitInfo

	// Valid when Tag == ResumeForkedThread.
	Thread weakref.WeakRef[api.Resumable]
}

// NewDiscardDescriptor builds a Discard completion.
func NewDiscardDescriptor() CompletionDescriptor {
	return CompletionDescriptor{Tag: Discard}
}

// NewPostToHubDescriptor builds a PostToHub completion targeting hub, with
// sinfo echoed back in the projected EventRecord.
func NewPostToHubDescriptor(hub weakref.WeakRef[*Hub], sinfo api.SubmitInfo) CompletionDescriptor {
	return CompletionDescriptor{Tag: PostToHub, Hub: hub, SubmitInfo: sinfo}
}

// NewResumeForkedThreadDescriptor builds a ResumeForkedThread completion
// targeting thread.
func NewResumeForkedThreadDescriptor(thread weakref.WeakRef[api.Resumable]) CompletionDescriptor {
	return CompletionDescriptor{Tag: ResumeForkedThread, Thread: thread}
}

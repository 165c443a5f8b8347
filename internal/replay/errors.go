package replay

import "errors"

// Replay failures are typed and recoverable: the batch loop reports them
// per file and continues with the next file. Nothing in this package
// aborts the process.
var (
	// ErrProvisioning covers argument provisioning failures: a count or
	// shape mismatch between the snapshot's recorded arguments and the
	// program's declared parameters.
	ErrProvisioning = errors.New("argument provisioning failed")

	// ErrMalformedArgument is a recorded argument that does not decode.
	ErrMalformedArgument = errors.New("malformed recorded argument")

	// ErrAmbiguousStreamingSource is returned when stream shape inference
	// finds more than one streaming input operation. The coordinator
	// refuses to guess among multiple sources.
	ErrAmbiguousStreamingSource = errors.New("ambiguous streaming source")

	// ErrExecution is a backend failure during a run. Remaining runs are
	// not attempted.
	ErrExecution = errors.New("execution failed")

	// ErrFeedWorker is a streaming feed worker that failed a push or did
	// not terminate within the shutdown timeout.
	ErrFeedWorker = errors.New("feed worker failed")
)

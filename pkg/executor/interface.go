package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteStderr returns the command's stderr output on success. Some
	// tools (ffmpeg filters) report their results on stderr only.
	ExecuteStderr(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

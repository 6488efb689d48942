package taxonomy

import "time"

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func ptr[T any](v T) *T { return &v }
